package board

import "time"

// Stats is the summary shown above the comment list.
type Stats struct {
	Total         int    `json:"total"`
	UniqueAuthors int    `json:"uniqueAuthors"`
	Replies       int    `json:"replies"`
	LastActivity  string `json:"lastActivity"`
}

// Stats summarizes the forest as of now.
func (s *Service) Stats(now time.Time) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{
		Total:         s.engine.CountAll(),
		UniqueAuthors: s.engine.CountUniqueAuthors(),
		Replies:       s.engine.CountReplies(),
		LastActivity:  Never,
	}
	if latest, ok := s.engine.LatestActivity(); ok {
		st.LastActivity = TimeAgo(latest, now)
	} else if st.Total > 0 {
		st.LastActivity = Unknown
	}
	return st
}
