package config

import "time"

// NewGeminiForTest creates a Gemini config for testing purposes
func NewGeminiForTest(projectID, location string) *Gemini {
	return &Gemini{
		projectID: projectID,
		location:  location,
	}
}

// NewOpenAIForTest creates an OpenAI config for testing purposes
func NewOpenAIForTest(apiKey, model string) *OpenAI {
	return &OpenAI{
		apiKey: apiKey,
		model:  model,
	}
}

// NewLLMForTest creates an LLM config for testing purposes
func NewLLMForTest(openai *OpenAI, gemini *Gemini, dimension int) *LLM {
	return &LLM{
		openai:    *openai,
		gemini:    *gemini,
		dimension: dimension,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, projectID, collectionPrefix string) *Repository {
	return &Repository{
		backend:          backend,
		projectID:        projectID,
		collectionPrefix: collectionPrefix,
	}
}

// NewKafkaForTest creates a Kafka config for testing purposes
func NewKafkaForTest(brokers []string, topic, prefix, username, password string) *Kafka {
	return &Kafka{
		brokers:       brokers,
		topic:         topic,
		groupIDPrefix: prefix,
		username:      username,
		password:      password,
		dialTimeout:   time.Second,
	}
}

// NewSentryForTest creates a Sentry config for testing purposes
func NewSentryForTest(dsn, env string) *Sentry {
	return &Sentry{
		dsn: dsn,
		env: env,
	}
}
