package domain

import "context"

// TripleLog is the append-only durable record of every triple merged into the graph.
type TripleLog interface {
	AppendTriple(ctx context.Context, t *Triple) error
	// ListTriples returns every triple in insertion (id) order.
	ListTriples(ctx context.Context) ([]Triple, error)
	CountTriples(ctx context.Context) (int64, error)
}

// ExperienceLog is the append-only durable record of learning experiences.
type ExperienceLog interface {
	AppendExperience(ctx context.Context, e *Experience) error
	// ListExperiences returns the newest experiences first. An empty actorID matches all actors.
	ListExperiences(ctx context.Context, actorID string, limit int) ([]Experience, error)
	CountExperiences(ctx context.Context) (int64, error)
}

// KnowledgeLog is the full persistence adapter.
type KnowledgeLog interface {
	TripleLog
	ExperienceLog
	Close() error
}

// Pinger is implemented by logs that can report whether their backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
