package config

const (
	defaultArchiveFolder       = "FONarchive"
	defaultDescriptorName      = "entitlements.xml"
	defaultMinFontBytes        = 1024
	defaultLowSpaceBytes       = 1 << 30
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultLogDir              = "~/.local/share/fonarchive/logs"
	defaultLogMaxSizeMB        = 10
	defaultLogBackups          = 1
	defaultLogRetentionDays    = 30
	defaultMaxUsernameAttempts = 3
)

// defaultFamilySuffixes lists the weight and style words stripped from a font
// family name to derive its base family.
var defaultFamilySuffixes = []string{
	"Bold", "Semibold", "Italic", "Regular", "Light", "Medium", "Black", "Thin",
	"Variable", "Condensed", "Extended", "Pro", "Display", "Capt", "Cond", "Wide",
	"SmBd", "Demi",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Archive: Archive{
			FolderName:     defaultArchiveFolder,
			DescriptorName: defaultDescriptorName,
			MinFontBytes:   defaultMinFontBytes,
			LowSpaceBytes:  defaultLowSpaceBytes,
			FamilySuffixes: append([]string(nil), defaultFamilySuffixes...),
		},
		Logging: Logging{
			Format:   defaultLogFormat,
			Level:    defaultLogLevel,
			MaxSizeMB: defaultLogMaxSizeMB,
			Backups:   defaultLogBackups,

			RetentionDays: defaultLogRetentionDays,
		},
		Prompts: Prompts{
			MaxUsernameAttempts: defaultMaxUsernameAttempts,
		},
	}
}
