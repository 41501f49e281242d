package usecase

// Classify is exported for testing
var Classify = classify

