package log

import "time"

// Timed logs the elapsed wall-clock time of an operation. Use with defer:
//
//	defer log.Timed("train_all_models")()
func Timed(name string) func() {
	start := time.Now()
	return func() {
		L().Info().
			Str("operation", name).
			Dur("elapsed", time.Since(start)).
			Msg("operation finished")
	}
}
