package api

// DefaultBaseURL is the API target used when the config leaves it blank.
const DefaultBaseURL = "http://localhost:8080"
