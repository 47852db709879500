package config

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir:  "/volume1/photo",
			RecoveryDir: "/volume1/photo/RECOVERY",
			LogDir:      "/volume1/photo/logs",
		},
		Exiftool: Exiftool{
			Binary:       "exiftool",
			ProbeTimeout: 10,
			WriteTimeout: 30,
		},
		PathMap: []Translation{
			{From: "/Volumes/photo-1/", To: "/volume1/photo/"},
		},
		Apply: Apply{
			CheckpointInterval: 100,
			ConfidenceFloor:    "HIGH",
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}
