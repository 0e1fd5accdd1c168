package usecase

// Exposed for tests
var ParseClassification = parseClassification
