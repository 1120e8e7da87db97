package board

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeAgo(t *testing.T) {
	tests := []struct {
		age  time.Duration
		want string
	}{
		{0, "Just now"},
		{59*time.Second + 999*time.Millisecond, "Just now"},
		{time.Minute, "1 minute ago"},
		{119 * time.Second, "1 minute ago"},
		{2 * time.Minute, "2 minutes ago"},
		{59*time.Minute + 59*time.Second, "59 minutes ago"},
		{time.Hour, "1 hour ago"},
		{2*time.Hour - time.Second, "1 hour ago"},
		{2 * time.Hour, "2 hours ago"},
		{23 * time.Hour, "23 hours ago"},
		{24 * time.Hour, "1 day ago"},
		{47 * time.Hour, "1 day ago"},
		{48 * time.Hour, "2 days ago"},
		{400 * 24 * time.Hour, "400 days ago"},
	}
	for _, tt := range tests {
		t.Run(tt.want+"/"+tt.age.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, TimeAgo(t0.Add(-tt.age), t0))
		})
	}
}

func TestTimeAgo_FutureIsJustNow(t *testing.T) {
	assert.Equal(t, "Just now", TimeAgo(t0.Add(3*time.Hour), t0))
}
