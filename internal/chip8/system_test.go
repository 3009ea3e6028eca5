package chip8

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	s := New()

	require.Equal(t, uint16(ProgramStart), s.reg.pc)
	require.Equal(t, byte(0), s.stack.sp)
	require.Equal(t, uint16(0), s.reg.i)
	require.Equal(t, [screenLen]byte{}, s.screen)

	// font table sits at 0x000
	require.Equal(t, fontSet[:], s.mem[:len(fontSet)])
	for _, b := range s.mem[len(fontSet):] {
		require.Equal(t, byte(0), b)
	}
}

func TestReset(t *testing.T) {
	s := New()
	s.reg.pc = 0x300
	s.reg.v[0] = 42
	s.reg.i = 100
	s.stack.sp = 5
	s.timers.delay = 10
	s.timers.sound = 3
	s.keys.down[4] = true
	s.screen[0] = 0xFF
	s.mem[0x400] = 0xAB

	s.Reset()

	require.Equal(t, uint16(ProgramStart), s.reg.pc)
	require.Equal(t, byte(0), s.reg.v[0])
	require.Equal(t, uint16(0), s.reg.i)
	require.Equal(t, byte(0), s.stack.sp)
	require.Equal(t, byte(0), s.timers.delay)
	require.Equal(t, byte(0), s.timers.sound)
	require.False(t, s.keys.down[4])
	require.Equal(t, [screenLen]byte{}, s.screen)
	require.Equal(t, byte(0), s.mem[0x400])
	require.Equal(t, fontSet[:], s.mem[:len(fontSet)])
}

func TestResetKeepsRandSource(t *testing.T) {
	s := New()
	s.SetRand(func() byte { return 0x42 })
	s.Reset()
	require.Equal(t, byte(0x42), s.rand())
}

func TestLoad(t *testing.T) {
	s := New()
	rom := []byte{0x00, 0xE0, 0x12, 0x00}
	require.NoError(t, s.Load(bytes.NewReader(rom)))
	require.Equal(t, rom, s.mem[ProgramStart:ProgramStart+len(rom)])
}

func TestLoadSizeBoundary(t *testing.T) {
	s := New()
	require.NoError(t, s.Load(bytes.NewReader(make([]byte, MaxROMSize))))

	s.Reset()
	err := s.Load(bytes.NewReader(make([]byte, MaxROMSize+1)))
	require.ErrorIs(t, err, ErrProgramTooLarge)

	// a rejected ROM leaves the program area untouched
	for _, b := range s.mem[ProgramStart:] {
		require.Equal(t, byte(0), b)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.ch8")
	rom := []byte{0x60, 0x0A, 0x61, 0x0B}
	require.NoError(t, os.WriteFile(path, rom, 0o644))

	s := New()
	require.NoError(t, s.LoadFile(path))
	require.Equal(t, rom, s.mem[ProgramStart:ProgramStart+len(rom)])

	require.Error(t, s.LoadFile(filepath.Join(t.TempDir(), "missing.ch8")))
}

func TestScreenExpansion(t *testing.T) {
	s := New()
	s.screen[0] = 0xA5 // 1010 0101, MSB is the leftmost pixel
	s.screen[8] = 0x80 // start of row 1

	out := s.Screen()
	require.Len(t, out, ScreenWidth*ScreenHeight)
	require.Equal(t, []byte{0xFF, 0x00, 0xFF, 0x00, 0x00, 0xFF, 0x00, 0xFF}, out[:8])
	require.Equal(t, byte(0xFF), out[ScreenWidth])
	require.Equal(t, byte(0x00), out[ScreenWidth+1])
}

func TestDecTimers(t *testing.T) {
	s := New()
	s.timers.delay = 2
	s.timers.sound = 1

	require.True(t, s.DecTimers(), "sound 1 -> 0 should report the beep edge")
	require.Equal(t, byte(1), s.timers.delay)
	require.Equal(t, byte(0), s.timers.sound)

	require.False(t, s.DecTimers(), "sound already at zero, no edge")
	require.Equal(t, byte(0), s.timers.delay)

	// saturation: further calls hold at zero
	for i := 0; i < 10; i++ {
		require.False(t, s.DecTimers())
	}
	require.Equal(t, byte(0), s.timers.delay)
	require.Equal(t, byte(0), s.timers.sound)
}

func TestKeyEdges(t *testing.T) {
	s := New()

	require.NoError(t, s.PressKey(0xA))
	pressed, err := s.keys.Pressed(0xA)
	require.NoError(t, err)
	require.True(t, pressed)

	require.NoError(t, s.ReleaseKey(0xA))
	pressed, err = s.keys.Pressed(0xA)
	require.NoError(t, err)
	require.False(t, pressed)

	require.Equal(t, InvalidKeyError{Key: 16}, s.PressKey(16))
	require.Equal(t, InvalidKeyError{Key: 0xFF}, s.ReleaseKey(0xFF))
	_, err = s.keys.Pressed(16)
	require.Equal(t, InvalidKeyError{Key: 16}, err)
}

func TestRegisterAccessors(t *testing.T) {
	s := New()

	require.NoError(t, s.reg.Write(0xF, 0x7F))
	v, err := s.reg.Read(0xF)
	require.NoError(t, err)
	require.Equal(t, byte(0x7F), v)

	_, err = s.reg.Read(16)
	require.Equal(t, InvalidRegisterError{Reg: 16}, err)
	require.Equal(t, InvalidRegisterError{Reg: 20}, s.reg.Write(20, 1))
}

func TestMemoryBounds(t *testing.T) {
	s := New()

	require.NoError(t, s.writeMem(0xFFF, 0xAA))
	v, err := s.readMem(0xFFF)
	require.NoError(t, err)
	require.Equal(t, byte(0xAA), v)

	_, err = s.readMem(0x1000)
	require.Equal(t, InvalidMemoryAccessError{Addr: 0x1000}, err)
	require.Equal(t, InvalidMemoryAccessError{Addr: 0x1000}, s.writeMem(0x1000, 1))

	// a pair read needs both bytes in range
	_, err = s.readMemPair(0xFFF)
	require.Equal(t, InvalidMemoryAccessError{Addr: 0xFFF}, err)
}

func TestDumpRegisters(t *testing.T) {
	s := New()
	s.reg.pc = 0x246
	s.reg.i = 0x0AB
	s.reg.v[0x3] = 0x1F

	dump := s.DumpRegisters()
	require.Contains(t, dump, "pc: 246")
	require.Contains(t, dump, "I: 0AB")
	require.Contains(t, dump, "v3: 1F")
}
