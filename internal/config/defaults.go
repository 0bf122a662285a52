package config

const (
	defaultLogDir                = "~/.local/share/axon/logs"
	defaultCacheDir              = "~/.local/share/axon/cache"
	defaultPythonInterpreter     = "python3"
	defaultPatchSource           = "./sharded.py"
	defaultPatchModule           = "cloudvolume.datasource.precomputed.skeleton.sharded"
	defaultEmbeddingScript       = "main.py"
	defaultEmbeddingWorkers      = 5
	defaultStaggerSeconds        = 60
	defaultSettleSeconds         = 600
	defaultReadinessTimeout      = 120
	defaultMinFreeGiB            = 10
	defaultNumCPUs               = 4
	defaultInPlanes              = 1
	defaultOutPlanes             = 16
	defaultSamplesPerBatch       = 16
	defaultClassificationScript  = "test_classification_biological.py"
	defaultClassificationModel   = "pointnet2_binary_ssg"
	defaultClassificationLogDir  = "pointnet2_binary_ssg"
	defaultClassificationGPUs    = 1
	defaultClassificationBatch   = 64
	defaultClassificationLR      = 0.0005
	defaultClassificationPoints  = 2048
	defaultClassificationPackage = "plyfile"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultLogMaxSizeMB          = 50
	defaultLogMaxBackups         = 5
	defaultLogRetentionDays      = 60
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			CacheDir: defaultCacheDir,
		},
		Python: Python{
			Interpreter: defaultPythonInterpreter,
		},
		Setup: Setup{
			UpgradePip: true,
			Packages:   []string{"connected-components-3d", "plyfile"},
		},
		Patch: Patch{
			Source: defaultPatchSource,
			Module: defaultPatchModule,
		},
		Embedding: Embedding{
			Script:           defaultEmbeddingScript,
			NumCPUs:          defaultNumCPUs,
			InPlanes:         defaultInPlanes,
			OutPlanes:        defaultOutPlanes,
			SamplesPerBatch:  defaultSamplesPerBatch,
			Workers:          defaultEmbeddingWorkers,
			StaggerSeconds:   defaultStaggerSeconds,
			SettleSeconds:    defaultSettleSeconds,
			Readiness:        false,
			ReadinessTimeout: defaultReadinessTimeout,
			MinFreeGiB:       defaultMinFreeGiB,
		},
		Classification: Classification{
			Script:       defaultClassificationScript,
			Model:        defaultClassificationModel,
			LogDir:       defaultClassificationLogDir,
			NumGPUs:      defaultClassificationGPUs,
			BatchSize:    defaultClassificationBatch,
			LearningRate: defaultClassificationLR,
			NumPoint:     defaultClassificationPoints,
			Package:      defaultClassificationPackage,
		},
		Checkpoint: Checkpoint{
			Region:    "us-east-1",
			PathStyle: true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			MaxSizeMB:     defaultLogMaxSizeMB,
			MaxBackups:    defaultLogMaxBackups,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
