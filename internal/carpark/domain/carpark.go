package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/glitchjsy/opendata-api/shared/domain"
	"github.com/glitchjsy/opendata-api/shared/platform/query"
	"github.com/glitchjsy/opendata-api/shared/platform/sqlstore"
	"github.com/glitchjsy/opendata-api/shared/platform/stats"
)

const (
	LiveSpacesTable     = "live_parking_spaces"
	CarparksTable       = "carparks"
	CompaniesTable      = "companies"
	PaymentMethodsTable = "carpark_payment_methods"

	ExpandPaymentMethods = "paymentMethods"
)

// StatusFull es el estado que publica un parking sin plazas.
const StatusFull = "FULL"

const (
	StatBusiestCarparks      = "busiestCarparks"
	StatMostCommonFullDays   = "mostCommonFullDays"
	StatAvailabilityThisYear = "availabilityThisYear"
	StatAvailabilityLastYear = "availabilityLastYear"
)

var Filters = sharedDomain.NewFilterSet(
	sharedDomain.FilterDef{Key: "startDate", Field: "created_at", Op: sharedDomain.OpDateGte},
	sharedDomain.FilterDef{Key: "endDate", Field: "created_at", Op: sharedDomain.OpDateLte},
	sharedDomain.FilterDef{Key: "name", Field: "name", Op: sharedDomain.OpLike},
	sharedDomain.FilterDef{Key: "code", Field: "code", Op: sharedDomain.OpEq},
	sharedDomain.FilterDef{Key: "status", Field: "status", Op: sharedDomain.OpEq},
)

// CarparkRef identifica un aparcamiento por id (UUID) o por código de
// seguimiento en vivo. Sólo uno de los dos campos está relleno.
type CarparkRef struct {
	ID   string
	Code string
}

// ParseCarparkRef decide si idOrCode es un id o un código.
func ParseCarparkRef(idOrCode string) (CarparkRef, error) {
	idOrCode = strings.TrimSpace(idOrCode)
	if idOrCode == "" {
		return CarparkRef{}, sharedDomain.NewInvalidInput("idOrCode", "must not be empty")
	}
	if _, err := uuid.Parse(idOrCode); err == nil {
		return CarparkRef{ID: idOrCode}, nil
	}
	return CarparkRef{Code: idOrCode}, nil
}

// CarparkRepository es el puerto de salida del contexto.
type CarparkRepository interface {
	// ListCarparks devuelve todos los aparcamientos con sus métodos de pago.
	ListCarparks(ctx context.Context) ([]*sqlstore.Row, error)
	// FindCarpark devuelve sharedDomain.ErrNotFound si no existe.
	FindCarpark(ctx context.Context, ref CarparkRef) (*sqlstore.Row, error)
	// LiveSpaceDates devuelve los días con muestras, del más reciente al más antiguo.
	LiveSpaceDates(ctx context.Context) ([]string, error)
	ListLiveSpaces(ctx context.Context, where sharedDomain.Criteria, page query.PageRequest) (query.PageResult[*sqlstore.Row], error)
	// Stats calcula las estadísticas relativas al año de now.
	Stats(ctx context.Context, now time.Time) (*stats.Report, error)
}
