package config

// Transfer modes.
const (
	ModeCopy = "copy"
	ModeMove = "move"
)

// Collision policies applied when a destination file already exists.
const (
	CollisionRename    = "rename"
	CollisionSkip      = "skip"
	CollisionOverwrite = "overwrite"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		Organize: Organize{
			Granularity:  "yearly",
			Mode:         ModeCopy,
			OnCollision:  CollisionRename,
			PreviewLimit: defaultPreviewSize,
		},
		Journal: Journal{
			Enabled: true,
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}
