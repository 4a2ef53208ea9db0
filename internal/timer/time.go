package timer

import (
	"time"

	"github.com/rs/zerolog/log"
)

// TimeTrack logs the time elapsed since start. Meant to be deferred: defer TimeTrack(time.Now(), "import").
func TimeTrack(start time.Time, name string) {
	log.Info().Str("step", name).Dur("elapsed", time.Since(start)).Msgf("%s took %s", name, time.Since(start).Round(time.Millisecond))
}
