package supervisor

import (
	"fmt"
	"io"
	"math/rand/v2"
	"time"
)

const (
	upperAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerAlphabet = "abcdefghijklmnopqrstuvwxyz"

	// per-character delay is a uniform multiple of the unit in this range
	minDelayUnits = 4
	maxDelayUnits = 25
)

// parentDelay makes the parent a little slower than the child.
func parentDelay(unit time.Duration) time.Duration {
	return unit * 105 / 100
}

// countLoop prints loops lines starting at from, moving by step, sleeping
// on every SleepEvery-th iteration.
func countLoop(w io.Writer, name string, cfg Config, from, step int) error {
	counter := from
	for i := 0; i < cfg.Loops; i++ {
		if (i+1)%cfg.SleepEvery == 0 {
			time.Sleep(cfg.SleepInterval)
		}
		if _, err := fmt.Fprintf(w, "%s counts %d\n", name, counter); err != nil {
			return err
		}
		counter += step
	}
	return nil
}

// alphabetLoop writes the alphabet loops times, one unbuffered write per
// character so the interleaving with the other process stays visible.
func alphabetLoop(w io.Writer, alphabet string, loops int, unit time.Duration) error {
	buf := make([]byte, 1)
	for i := 0; i < loops; i++ {
		for j := 0; j < len(alphabet); j++ {
			buf[0] = alphabet[j]
			if _, err := w.Write(buf); err != nil {
				return err
			}
			time.Sleep(randomDelay(unit))
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

func randomDelay(unit time.Duration) time.Duration {
	return unit * time.Duration(minDelayUnits+rand.IntN(maxDelayUnits-minDelayUnits+1))
}
