package main

import (
	"log"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate    = beep.SampleRate(44100)
	brushTone     = 196.0
	brushDuration = 90 * time.Millisecond
	brushCooldown = 250 * time.Millisecond
	brushVolume   = -1.5
)

// cue plays the tapestry brush sound, at most one per cooldown window
type cue struct {
	enabled bool
	last    time.Time
}

func newCue() *cue {
	c := &cue{}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		// Non-fatal, sandbox runs silent
		log.Printf("audio init failed: %v", err)
		return c
	}
	c.enabled = true
	return c
}

func (c *cue) brush() {
	if !c.enabled || time.Since(c.last) < brushCooldown {
		return
	}
	c.last = time.Now()

	tone, err := generators.SineTone(sampleRate, brushTone)
	if err != nil {
		log.Printf("brush tone: %v", err)
		return
	}
	quiet := &effects.Volume{
		Streamer: beep.Take(sampleRate.N(brushDuration), tone),
		Base:     2,
		Volume:   brushVolume,
	}
	speaker.Play(quiet)
}

func (c *cue) close() {
	if c.enabled {
		speaker.Close()
	}
}
