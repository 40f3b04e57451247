package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusColor(t *testing.T) {
	cases := map[string]string{
		"APROBADO":    "#28a745",
		" pendiente ": "#ffc107",
		"en proceso":  "#17a2b8",
		"Rechazado":   "#dc3545",
		"archivado":   DefaultStatusColor,
		"":            DefaultStatusColor,
	}
	for status, want := range cases {
		assert.Equal(t, want, StatusColor(status), status)
	}
}

func TestRecommendationBadgeColor(t *testing.T) {
	assert.Equal(t, "#28a745", Recommendation{Priority: PriorityHigh}.BadgeColor())
	assert.Equal(t, "#ffc107", Recommendation{Priority: PriorityMedium}.BadgeColor())
	assert.Equal(t, "#dc3545", Recommendation{Priority: PriorityLow}.BadgeColor())
	assert.Equal(t, DefaultStatusColor, Recommendation{}.BadgeColor())
}
