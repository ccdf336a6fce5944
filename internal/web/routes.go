package web

import "fmt"

const (
	Users          = "/users/"
	User           = "/users/{user_id}"
	Records        = "/records/"
	UserRecords    = "/users/{user_id}/records/"
	RecordSearch   = "/users/{user_id}/records/search"
	SimilarRecords = "/users/{user_id}/similar_records/"
	Health         = "/health"
	Metrics        = "/metrics"
)

// SimilarRecordsRoute generates the similarity path for a user.
func SimilarRecordsRoute(userID int64) string {
	return fmt.Sprintf("/users/%d/similar_records/", userID)
}

func UserRecordsRoute(userID int64) string {
	return fmt.Sprintf("/users/%d/records/", userID)
}
