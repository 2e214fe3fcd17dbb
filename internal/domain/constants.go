package domain

const (
	// MinorUnitsPerMajor is the number of kopecks in a ruble.
	MinorUnitsPerMajor = 100

	INNLegalEntityLength = 10
	INNIndividualLength  = 12

	MaxDocumentNumberLength = 64
	MaxCommentLength        = 255

	// OutcomeAccepted and OutcomeAlreadyProcessed label ingestion results.
	OutcomeAccepted         = "accepted"
	OutcomeAlreadyProcessed = "already_processed"
	OutcomeFailed           = "failed"
)
