// Package emulator is the timing harness: it owns the System and the host
// adapters and drives instruction ticks, 60 Hz timer decrements, frame
// presentation, and key-edge dispatch from a single goroutine.
package emulator

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/okto-vm/okto/internal/beeper"
	"github.com/okto-vm/okto/internal/chip8"
	"github.com/okto-vm/okto/internal/display"
)

const (
	timerRate = 60
	frameRate = 60
)

// Config carries the flag-tunable harness settings.
type Config struct {
	// ClockHz is the instruction rate.
	ClockHz int

	// Scale is the window pixel scale factor.
	Scale int

	// Trace prints a per-instruction trace to stderr.
	Trace bool

	// Debug single-steps with a register dump, advancing on Enter.
	Debug bool
}

// Emulator binds a System to its window and beeper.
type Emulator struct {
	sys    *chip8.System
	win    *display.Window
	beeper *beeper.Beeper
	cfg    Config
	log    *slog.Logger
}

// New builds the System, loads the ROM, and opens the window. Audio failure
// is degraded to silence with a warning.
func New(pathToROM string, cfg Config, log *slog.Logger) (*Emulator, error) {
	sys := chip8.New()
	if cfg.Trace || cfg.Debug {
		sys.SetTracer(chip8.TraceTo(os.Stderr))
	}
	if err := sys.LoadFile(pathToROM); err != nil {
		return nil, fmt.Errorf("loading ROM %s: %w", pathToROM, err)
	}

	win, err := display.NewWindow(cfg.Scale)
	if err != nil {
		return nil, err
	}

	bpr, err := beeper.New()
	if err != nil {
		log.Warn("audio unavailable, continuing without sound", "err", err)
		bpr = nil
	}

	log.Info("loaded ROM", "path", pathToROM, "clock_hz", cfg.ClockHz, "scale", cfg.Scale)
	return &Emulator{sys: sys, win: win, beeper: bpr, cfg: cfg, log: log}, nil
}

// Run drives the machine until the user exits or a fatal error surfaces.
// Reaching a zero instruction is treated as the program's end: the last
// frame stays up until the window closes.
func (e *Emulator) Run() error {
	if e.cfg.Debug {
		return e.runDebug()
	}

	cpu := time.NewTicker(time.Second / time.Duration(e.cfg.ClockHz))
	timers := time.NewTicker(time.Second / timerRate)
	frame := time.NewTicker(time.Second / frameRate)
	defer cpu.Stop()
	defer timers.Stop()
	defer frame.Stop()

	for {
		select {
		case <-cpu.C:
			if err := e.sys.Tick(); err != nil {
				if errors.Is(err, chip8.ErrZeroInstruction) {
					e.log.Info("reached the end of the program, entering display loop")
					return e.displayLoop()
				}
				return err
			}
			e.win.UpdateInput()
		case <-timers.C:
			if e.sys.DecTimers() && e.beeper != nil {
				e.beeper.Beep()
			}
			e.win.UpdateInput()
		case <-frame.C:
			e.win.Draw(e.sys.Screen())
		}

		// each arm above refreshed input exactly once (Draw swaps buffers and
		// polls); edges must be dispatched before the next refresh discards them
		if e.win.ExitRequested() {
			e.log.Info("exit signal detected, gracefully shutting down")
			return nil
		}
		e.dispatchKeys()
	}
}

// runDebug steps one instruction per Enter keypress, printing the register
// dump before each step. Timers still decrement once per step.
func (e *Emulator) runDebug() error {
	stdin := bufio.NewScanner(os.Stdin)
	for {
		fmt.Println(e.sys.DumpRegisters())
		if err := e.sys.Tick(); err != nil {
			if errors.Is(err, chip8.ErrZeroInstruction) {
				e.log.Info("reached the end of the program, entering display loop")
				return e.displayLoop()
			}
			return err
		}
		if e.sys.DecTimers() && e.beeper != nil {
			e.beeper.Beep()
		}
		e.win.Draw(e.sys.Screen())
		if e.win.ExitRequested() {
			return nil
		}
		e.dispatchKeys()
		if !stdin.Scan() {
			return stdin.Err()
		}
	}
}

// displayLoop keeps presenting the final frame after the program has ended.
func (e *Emulator) displayLoop() error {
	frame := time.NewTicker(time.Second / frameRate)
	defer frame.Stop()

	for range frame.C {
		e.win.Draw(e.sys.Screen())
		if e.win.ExitRequested() {
			return nil
		}
	}
	return nil
}

// dispatchKeys funnels window key edges into the keypad so the next tick
// sees a consistent snapshot.
func (e *Emulator) dispatchKeys() {
	for _, ev := range e.win.PollKeys() {
		var err error
		if ev.Pressed {
			err = e.sys.PressKey(ev.Key)
		} else {
			err = e.sys.ReleaseKey(ev.Key)
		}
		if err != nil {
			// the key map only produces indexes 0x0..0xF
			e.log.Warn("dropping key event", "key", ev.Key, "err", err)
		}
	}
}
