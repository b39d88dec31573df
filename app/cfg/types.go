package cfg

const (
	StoreCMS    = "cms"
	StoreSQLite = "sqlite"
)

type Cfg struct {
	// Site configuration
	Port            string
	BaseUrl         string
	SiteName        string
	SiteDescription string
	SiteLanguage    string
	ContactEmail    string

	// Content store configuration
	Store            string
	CMSServiceDomain string
	CMSAPIKey        string
	CMSTimeout       int // seconds
	DBPath           string
	RedisAddr        string
	CacheTTL         int // seconds

	// Source import configuration
	SourcesDir        string
	WorkerCount       int
	SchedulerInterval int // seconds
	APIAccessKey      string

	// Query defaults
	DefaultPageSize int
	FeedItemCount   int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
