package bot

import "time"

const (
	defaultPrefix       = "!"
	defaultQueryPrefix  = "?"
	defaultListPageSize = 10
	defaultFAQFile      = "faq.json"
	defaultRecycleFile  = "faq_bin.json"
	defaultSettingsFile = "report_settings.json"
)

// Config holds the bot module configuration.
type Config struct {
	// Prefix starts every command. Defaults to "!".
	Prefix string `yaml:"prefix"`

	// QueryPrefix is the bare-query shortcut: a message starting with it
	// is resolved directly against the FAQ store. Defaults to "?".
	QueryPrefix string `yaml:"query_prefix"`

	// Managers are user IDs allowed to run FAQ management commands.
	// Empty means nobody can manage entries.
	Managers []string `yaml:"managers"`

	// FAQFile is the live store path. Defaults to {DataDir}/faq.json.
	FAQFile string `yaml:"faq_file"`

	// RecycleFile is the deleted-entry archive. Defaults to
	// {DataDir}/faq_bin.json.
	RecycleFile string `yaml:"recycle_file"`

	// SettingsFile persists the report toggles. Defaults to
	// {DataDir}/report_settings.json.
	SettingsFile string `yaml:"settings_file"`

	// AllowBugReports seeds the bug-report toggle on first run. Once the
	// settings file exists its value wins; nil keeps the built-in default.
	AllowBugReports *bool `yaml:"allow_bug_reports"`

	// BugReportCooldown seeds the per-user report cooldown in seconds on
	// first run, same precedence as AllowBugReports.
	BugReportCooldown *int `yaml:"bug_report_cooldown"`

	// ReservedTags can never be assigned to entries. Nil means the
	// default set.
	ReservedTags []string `yaml:"reserved_tags"`

	// TagCacheTTL bounds staleness of the tag listing cache. Zero means
	// the store default; negative disables the cache.
	TagCacheTTL time.Duration `yaml:"tag_cache_ttl"`

	// ListPageSize is the number of rows per list page. Defaults to 10.
	ListPageSize int `yaml:"list_page_size"`

	// Algolia configures the documentation search. All three fields must
	// be set for the search commands to work.
	Algolia AlgoliaConfig `yaml:"algolia"`
}

// AlgoliaConfig holds the DocSearch credentials.
type AlgoliaConfig struct {
	AppID     string `yaml:"app_id"`
	AuthKey   string `yaml:"auth_key"`
	IndexName string `yaml:"index_name"`
}

func (c *AlgoliaConfig) configured() bool {
	return c.AppID != "" && c.AuthKey != "" && c.IndexName != ""
}

func (c *Config) defaults() {
	if c.Prefix == "" {
		c.Prefix = defaultPrefix
	}
	if c.QueryPrefix == "" {
		c.QueryPrefix = defaultQueryPrefix
	}
	if c.ListPageSize <= 0 {
		c.ListPageSize = defaultListPageSize
	}
}
