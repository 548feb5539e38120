package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gamebookText = `NBA GAME BOOK
Los Angeles Lakers at Boston Celtics
October 22, 2024

OFFICIALS: Scott Foster (#48), Tony Brothers (#25), Marc Davis (#8)
ALTERNATES: John Goble (#10)

Attendance: 19,156
`

func TestGamebookOfficials(t *testing.T) {
	crew, err := GamebookOfficials([]byte(gamebookText))
	require.NoError(t, err)

	assert.Equal(t, []string{"Scott Foster", "Tony Brothers", "Marc Davis"}, crew.Officials)
	assert.Equal(t, []string{"John Goble"}, crew.Alternates)
}

func TestGamebookOfficialsNoAlternates(t *testing.T) {
	crew, err := GamebookOfficials([]byte("OFFICIALS: Scott Foster (#48)\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Scott Foster"}, crew.Officials)
	assert.Empty(t, crew.Alternates)
}

func TestGamebookOfficialsMissingLine(t *testing.T) {
	_, err := GamebookOfficials([]byte("just some text\nwith no crew\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OFFICIALS")
}
