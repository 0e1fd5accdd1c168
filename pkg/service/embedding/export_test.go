package embedding

// Exposed for tests
var FindBoundary = findBoundary
