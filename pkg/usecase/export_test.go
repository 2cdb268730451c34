package usecase

// QuotaAlertMessage exposes the Slack alert layout for tests
var QuotaAlertMessage = quotaAlertMessage
