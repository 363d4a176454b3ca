package email

const (
	subjectAgreementCreated   = "New supply agreement active"
	subjectFallbackSummaryFmt = "Fallback quantities applied to %d deliveries"
)
