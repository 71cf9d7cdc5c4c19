package chrono

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/require"
)

func TestStandardImpl(t *testing.T) {
	impl, err := NewStandardImpl("")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, DefaultLocation, impl.Location().String())
	require.Equal(t, DefaultLocation, impl.Now().Location().String())

	_, offset := time.Date(2024, 7, 1, 12, 0, 0, 0, impl.Location()).Zone()
	require.Equal(t, -3*60*60, offset)

	_, err = NewStandardImpl("Not/AZone")
	require.Error(t, err)
}

func TestFixedImpl(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	impl := FixedImpl{At: at}
	require.Equal(t, at, impl.Now())
	require.Equal(t, time.UTC, impl.Location())
}
