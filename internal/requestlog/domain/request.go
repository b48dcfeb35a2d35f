package domain

import (
	"context"
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/glitchjsy/opendata-api/shared/domain"
	"github.com/glitchjsy/opendata-api/shared/platform/sqlstore"
	"github.com/glitchjsy/opendata-api/shared/platform/stats"
)

const (
	RequestsTable = "api_requests"
	RequestsTopic = "api-requests"

	EventRequestTracked = "request.tracked"
)

const (
	StatTotals        = "totals"
	StatDailyForMonth = "dailyForMonth"
	StatTopEndpoints  = "topEndpoints"
)

const TopEndpointsLimit = 20

// Request es una petición HTTP registrada.
type Request struct {
	ID         uuid.UUID `json:"id"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	StatusCode int       `json:"statusCode"`
	IPAddress  string    `json:"ipAddress"`
	UserAgent  string    `json:"userAgent"`
	APITokenID *string   `json:"apiTokenId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func NewRequest(method, path string, status int, ip, userAgent, apiTokenID string, at time.Time) Request {
	r := Request{
		ID:         uuid.New(),
		Method:     method,
		Path:       path,
		StatusCode: status,
		IPAddress:  ip,
		UserAgent:  userAgent,
		CreatedAt:  at.UTC(),
	}
	if apiTokenID != "" {
		r.APITokenID = &apiTokenID
	}
	return r
}

func (r Request) PartitionKey() string { return r.Path }

// Scope acota estadísticas a un mes concreto.
type Scope struct {
	Year  int
	Month int
}

// NewScope devuelve nil (sin acotar) salvo que lleguen año y mes.
func NewScope(year, month *int) (*Scope, error) {
	if year == nil || month == nil {
		return nil, nil
	}
	if *year < 1 {
		return nil, sharedDomain.NewInvalidInput("year", "must be a positive integer")
	}
	if *month < 1 || *month > 12 {
		return nil, sharedDomain.NewInvalidInput("month", "must be between 1 and 12")
	}
	return &Scope{Year: *year, Month: *month}, nil
}

// ScopeOf devuelve el mes UTC que contiene t.
func ScopeOf(t time.Time) Scope {
	t = t.UTC()
	return Scope{Year: t.Year(), Month: int(t.Month())}
}

// Range devuelve [from, to) del mes.
func (s Scope) Range() (time.Time, time.Time) {
	from := time.Date(s.Year, time.Month(s.Month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}

// RequestRepository persiste peticiones.
type RequestRepository interface {
	Save(ctx context.Context, r Request) error
}

// RequestStatsRepository calcula las estadísticas del registro.
type RequestStatsRepository interface {
	Stats(ctx context.Context, scope *Scope, now time.Time) (*stats.Report, error)
	TopEndpoints(ctx context.Context, scope *Scope) ([]*sqlstore.Row, error)
}
