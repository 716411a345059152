package enum

type EntityType string

const (
	INGESTION_RUN EntityType = "INGESTION_RUN"
	EMAIL         EntityType = "EMAIL"
)

func (entityType EntityType) String() string {
	return string(entityType)
}
