package leaderboard

// Entry is one ranked row of a challenge leaderboard: how many times
// the user completed this challenge. Ordering is completion count
// descending, then username ascending.
type Entry struct {
	Username        string `json:"username"`
	CompletionCount int    `json:"completionCount"`
	ProfilePicture  string `json:"profilePicture,omitempty"`
}
