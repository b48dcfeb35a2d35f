package domain

import (
	"context"

	sharedDomain "github.com/glitchjsy/opendata-api/shared/domain"
	"github.com/glitchjsy/opendata-api/shared/platform/query"
	"github.com/glitchjsy/opendata-api/shared/platform/sqlstore"
	"github.com/glitchjsy/opendata-api/shared/platform/stats"
)

// Tablas
const (
	PetitionsTable          = "petitions"
	ResponsesTable          = "petition_ministers_responses"
	DebatesTable            = "petition_debates"
	SignaturesByParishTable = "petition_signatures_by_parish"
)

// Campos de expansión (includeFull)
const (
	ExpandResponse           = "response"
	ExpandDebate             = "debate"
	ExpandSignaturesByParish = "signaturesByParish"
)

// Estadísticas
const (
	StatTopPetitions           = "topPetitions"
	StatSignaturesByParish     = "signaturesByParish"
	StatPetitionsByState       = "petitionsByState"
	StatDebatedPetitions       = "debatedPetitions"
	StatPetitionsWithResponses = "petitionsWithResponses"
	StatPetitionsPerYear       = "petitionsPerYear"
	StatResponsesPerYear       = "responsesPerYear"
	StatDebatesPerYear         = "debatesPerYear"
)

// TopPetitionsLimit es el tamaño del ranking de firmas.
const TopPetitionsLimit = 10

// Filters son los parámetros que acepta el listado, en orden fijo.
var Filters = sharedDomain.NewFilterSet(
	sharedDomain.FilterDef{Key: "startDate", Field: "created_at", Op: sharedDomain.OpDateGte},
	sharedDomain.FilterDef{Key: "endDate", Field: "created_at", Op: sharedDomain.OpDateLte},
	sharedDomain.FilterDef{Key: "title", Field: "title", Op: sharedDomain.OpLike},
	sharedDomain.FilterDef{Key: "summary", Field: "summary", Op: sharedDomain.OpLike},
	sharedDomain.FilterDef{Key: "description", Field: "description", Op: sharedDomain.OpLike},
	sharedDomain.FilterDef{Key: "state", Field: "state", Op: sharedDomain.OpEq},
	sharedDomain.FilterDef{Key: "creator", Field: "creator_name", Op: sharedDomain.OpLike},
)

// PetitionRepository es el puerto de salida del contexto.
type PetitionRepository interface {
	List(ctx context.Context, where sharedDomain.Criteria, page query.PageRequest, includeFull bool) (query.PageResult[*sqlstore.Row], error)
	Stats(ctx context.Context) (*stats.Report, error)
}
