package gc

// Options configures the heap, mirroring GCOptions in
// original_source/Header/BuildScript/GC/Options.h. Fields are tagged for
// github.com/caarlos0/env/v6 so a host process can override them from the
// environment the same way internal/compileopts loads CompileOptions.
type Options struct {
	MaxPoolSize                    uint64 `env:"GC_MAX_POOL_SIZE" envDefault:"134217728"`    // 128 MiB
	MaxMetadataSize                uint64 `env:"GC_MAX_METADATA_SIZE" envDefault:"33554432"` // 32 MiB
	EnableGCLog                    bool   `env:"GC_ENABLE_LOG" envDefault:"false"`
	GCLogPath                      string `env:"GC_LOG_PATH" envDefault:"gc.log"`
	NewOldGenerationRatio          int    `env:"GC_NEW_OLD_RATIO" envDefault:"1"`
	NurserySurvivorGenerationRatio int    `env:"GC_NURSERY_SURVIVOR_RATIO" envDefault:"3"`
}

// DefaultOptions returns the zero-configured defaults, matching GCOptions'
// in-class initializers.
func DefaultOptions() Options {
	return Options{
		MaxPoolSize:                    128 << 20,
		MaxMetadataSize:                32 << 20,
		GCLogPath:                      "gc.log",
		NewOldGenerationRatio:          1,
		NurserySurvivorGenerationRatio: 3,
	}
}
