package testutil

import (
	"database/sql"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/Larcf/footstats-data/lib/sqliteutil"
)

// SetupDB opens an in-memory sqlite database with the schema applied, it is
// closed when the test ends.
func SetupDB(t testing.TB, schema string) *sql.DB {
	db, err := sqliteutil.OpenDB(schema, ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

// RandomSwitch returns a function that will output various integers at different weights.
//
// Ex. RandomSwitch(2, 3, 5) will return a function that will output:
//   - `0` 20% of the time
//   - `1` 30% of the time
//   - `2` 50% of the time
func RandomSwitch(weights ...int) func(rndm *rand.Rand) int {
	if len(weights) == 0 {
		panic("a random switch must have at least 1 probability")
	}

	var sum int
	for _, p := range weights {
		if p <= 0 {
			panic("weights must be positive")
		}
		sum += p
	}

	return func(rndm *rand.Rand) int {
		value := rndm.IntN(sum)

		threshold := 0
		for i := 0; i < len(weights); i++ {
			threshold += weights[i]
			if value < threshold {
				return i
			}
		}

		panic(fmt.Sprintf("random value generated was out of bounds: %d", value))
	}
}

// RandomString generates a random lowercase string given the pseudo random source.
func RandomString(rndm *rand.Rand, length int) string {
	str := make([]rune, length)
	for i := range length {
		str[i] = 'a' + rune(rndm.IntN(26))
	}
	return string(str)
}
