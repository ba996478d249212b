package config

const (
	defaultAPIListen       = ":8080"
	defaultClientAPITarget = "http://localhost:8080"

	defaultMemoryProvider = "inmemory"
	defaultVectorProvider = "inmemory"

	defaultEmbeddingProvider   = "ollama"
	defaultEmbeddingTarget     = "http://localhost:11434"
	defaultEmbeddingModel      = "nomic-embed-text"
	defaultEmbeddingDimensions = 768

	defaultResponderProvider = "rulebased"
	defaultResponderTarget   = "http://localhost:11434"
	defaultResponderModel    = "llama3.2"

	defaultEventStreamBrokers = "localhost:9092"
	defaultEventStreamTopic   = "psyche-events"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Client: ClientConfig{
			APITarget: defaultClientAPITarget,
		},
		Memory: MemoryConfig{
			Provider: defaultMemoryProvider,
		},
		VectorStore: VectorStoreConfig{
			Provider: defaultVectorProvider,
		},
		Embedding: EmbeddingConfig{
			Provider:   defaultEmbeddingProvider,
			Target:     defaultEmbeddingTarget,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
		},
		Responder: ResponderConfig{
			Provider: defaultResponderProvider,
			Target:   defaultResponderTarget,
			Model:    defaultResponderModel,
		},
		EventStream: EventStreamConfig{
			Enabled: false,
			Brokers: defaultEventStreamBrokers,
			Topic:   defaultEventStreamTopic,
		},
	}
}
