package planstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"alcyxob/palestra-app/internal/domain"
	"alcyxob/palestra-app/internal/metrics"
)

// StoreVersion is written into every persisted envelope.
const StoreVersion = 1

var (
	ErrEmptyPayload       = errors.New("empty snapshot payload")
	ErrUnsupportedPayload = errors.New("snapshot is neither a client list nor an envelope")
	ErrInvalidClients     = errors.New("snapshot holds a client without id or a repeated client id")
)

// Decode parses a persisted snapshot. Two historical shapes are accepted:
// a bare JSON array of clients (legacy) and the {version, clients} envelope.
// The result is normalized, see Normalize. The returned source is
// metrics.SourceLegacy or metrics.SourceSnapshot.
func Decode(raw string) (domain.Snapshot, string, error) {
	payload := bytes.TrimSpace([]byte(raw))
	if len(payload) == 0 {
		return domain.Snapshot{}, "", ErrEmptyPayload
	}

	switch payload[0] {
	case '[':
		var clients []domain.Client
		if err := json.Unmarshal(payload, &clients); err != nil {
			return domain.Snapshot{}, "", fmt.Errorf("decode legacy snapshot: %w", err)
		}
		if err := checkClients(clients); err != nil {
			return domain.Snapshot{}, "", err
		}
		return Normalize(domain.Snapshot{Version: StoreVersion, Clients: clients}), metrics.SourceLegacy, nil

	case '{', 'n':
		// "null" decodes to an empty envelope.
		var envelope struct {
			Version *int            `json:"version"`
			Clients []domain.Client `json:"clients"`
		}
		if err := json.Unmarshal(payload, &envelope); err != nil {
			return domain.Snapshot{}, "", fmt.Errorf("decode snapshot envelope: %w", err)
		}
		if err := checkClients(envelope.Clients); err != nil {
			return domain.Snapshot{}, "", err
		}
		version := StoreVersion
		if envelope.Version != nil {
			version = *envelope.Version
		}
		return Normalize(domain.Snapshot{Version: version, Clients: envelope.Clients}), metrics.SourceSnapshot, nil
	}

	return domain.Snapshot{}, "", ErrUnsupportedPayload
}

// checkClients rejects entries that cannot be addressed: null or id-less
// clients and days, and client ids used twice.
func checkClients(clients []domain.Client) error {
	seen := make(map[string]struct{}, len(clients))
	for i, c := range clients {
		if c.ID == "" {
			return fmt.Errorf("%w: entry %d has no id", ErrInvalidClients, i)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("%w: %q", ErrInvalidClients, c.ID)
		}
		seen[c.ID] = struct{}{}
		for j, d := range c.PlanDays {
			if d.ID == "" {
				return fmt.Errorf("%w: client %q day %d has no id", ErrInvalidClients, c.ID, j)
			}
		}
	}
	return nil
}

// Encode serializes the current-version envelope for clients.
func Encode(clients []domain.Client) (string, error) {
	if clients == nil {
		clients = []domain.Client{}
	}
	b, err := json.Marshal(domain.Snapshot{Version: StoreVersion, Clients: clients})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Normalize fills what older snapshots lack: empty sequences instead of
// missing ones, and an inferred weekday for days stored without one.
func Normalize(snap domain.Snapshot) domain.Snapshot {
	out := domain.Snapshot{
		Version: snap.Version,
		Clients: make([]domain.Client, len(snap.Clients)),
	}
	for i, c := range snap.Clients {
		out.Clients[i] = normalizeClient(c)
	}
	return out
}

func normalizeClient(c domain.Client) domain.Client {
	days := make([]domain.WorkoutDay, len(c.PlanDays))
	for i, d := range c.PlanDays {
		d = d.Clone()
		if d.Weekday == "" {
			d.Weekday = domain.InferWeekday(d.ID, d.Title)
		}
		days[i] = d
	}
	c.PlanDays = days
	return c
}

func normalizeClients(clients []domain.Client) []domain.Client {
	return Normalize(domain.Snapshot{Clients: clients}).Clients
}
