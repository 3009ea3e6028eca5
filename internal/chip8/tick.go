package chip8

import "fmt"

// Tick executes exactly one instruction: fetch the big-endian word at PC,
// decode it, run the opcode body, then advance PC by 2 unless the body took
// over control flow (JP, CALL, JP V0, or Fx0A still waiting for a key).
// RET deliberately falls through to the advance so control resumes at the
// instruction after the matching CALL. On error the rest of the machine
// state is left untouched.
func (s *System) Tick() error {
	code, err := s.readMemPair(s.reg.pc)
	if err != nil {
		return err
	}
	if code == 0 {
		return ErrZeroInstruction
	}
	in, err := Decode(code)
	if err != nil {
		return err
	}

	s.tracer.lazy(func() string {
		return fmt.Sprintf("%03X  %04X  %s", s.reg.pc, code, in)
	})

	advance := true

	switch in.Op {
	case OpCls:
		s.screen = [screenLen]byte{}

	case OpRet:
		addr, err := s.stack.pop()
		if err != nil {
			return err
		}
		s.reg.pc = addr

	case OpJp:
		s.reg.pc = in.NNN
		advance = false

	case OpCall:
		if err := s.stack.push(s.reg.pc); err != nil {
			return err
		}
		s.reg.pc = in.NNN
		advance = false

	case OpSeByte:
		vx, err := s.reg.Read(in.X)
		if err != nil {
			return err
		}
		if vx == in.KK {
			s.reg.pc += 2
		}

	case OpSneByte:
		vx, err := s.reg.Read(in.X)
		if err != nil {
			return err
		}
		if vx != in.KK {
			s.reg.pc += 2
		}

	case OpSeReg:
		vx, vy, err := s.readPair(in)
		if err != nil {
			return err
		}
		if vx == vy {
			s.reg.pc += 2
		}

	case OpLdByte:
		if err := s.reg.Write(in.X, in.KK); err != nil {
			return err
		}

	case OpAddByte:
		vx, err := s.reg.Read(in.X)
		if err != nil {
			return err
		}
		if err := s.reg.Write(in.X, vx+in.KK); err != nil {
			return err
		}

	case OpLdReg:
		vy, err := s.reg.Read(in.Y)
		if err != nil {
			return err
		}
		if err := s.reg.Write(in.X, vy); err != nil {
			return err
		}

	case OpOr:
		vx, vy, err := s.readPair(in)
		if err != nil {
			return err
		}
		if err := s.reg.Write(in.X, vx|vy); err != nil {
			return err
		}

	case OpAnd:
		vx, vy, err := s.readPair(in)
		if err != nil {
			return err
		}
		if err := s.reg.Write(in.X, vx&vy); err != nil {
			return err
		}

	case OpXor:
		vx, vy, err := s.readPair(in)
		if err != nil {
			return err
		}
		if err := s.reg.Write(in.X, vx^vy); err != nil {
			return err
		}

	case OpAddReg:
		vx, vy, err := s.readPair(in)
		if err != nil {
			return err
		}
		var carry byte
		if int(vx)+int(vy) > 0xFF {
			carry = 1
		}
		// VF is written last so ADD VF, Vy leaves the flag, not the sum
		if err := s.reg.Write(in.X, vx+vy); err != nil {
			return err
		}
		if err := s.reg.Write(0xF, carry); err != nil {
			return err
		}

	case OpSubReg:
		vx, vy, err := s.readPair(in)
		if err != nil {
			return err
		}
		var noBorrow byte
		if vx >= vy {
			noBorrow = 1
		}
		if err := s.reg.Write(in.X, vx-vy); err != nil {
			return err
		}
		if err := s.reg.Write(0xF, noBorrow); err != nil {
			return err
		}

	case OpShr:
		vx, err := s.reg.Read(in.X)
		if err != nil {
			return err
		}
		bit := vx & 1
		if err := s.reg.Write(in.X, vx>>1); err != nil {
			return err
		}
		if err := s.reg.Write(0xF, bit); err != nil {
			return err
		}

	case OpSubn:
		vx, vy, err := s.readPair(in)
		if err != nil {
			return err
		}
		var noBorrow byte
		if vy >= vx {
			noBorrow = 1
		}
		if err := s.reg.Write(in.X, vy-vx); err != nil {
			return err
		}
		if err := s.reg.Write(0xF, noBorrow); err != nil {
			return err
		}

	case OpShl:
		vx, err := s.reg.Read(in.X)
		if err != nil {
			return err
		}
		bit := vx >> 7 & 1
		if err := s.reg.Write(in.X, vx<<1); err != nil {
			return err
		}
		if err := s.reg.Write(0xF, bit); err != nil {
			return err
		}

	case OpSneReg:
		vx, vy, err := s.readPair(in)
		if err != nil {
			return err
		}
		if vx != vy {
			s.reg.pc += 2
		}

	case OpLdI:
		s.reg.i = in.NNN

	case OpJpV0:
		v0, err := s.reg.Read(0)
		if err != nil {
			return err
		}
		s.reg.pc = (uint16(v0) + in.NNN) & 0x0FFF
		advance = false

	case OpRnd:
		if err := s.reg.Write(in.X, s.rand()&in.KK); err != nil {
			return err
		}

	case OpDrw:
		if int(s.reg.i) < memorySize && int(s.reg.i)+int(in.N) > memorySize {
			return InvalidMemoryAccessError{Addr: memorySize}
		}
		if err := s.draw(in); err != nil {
			return err
		}

	case OpSkp:
		vx, err := s.reg.Read(in.X)
		if err != nil {
			return err
		}
		pressed, err := s.keys.Pressed(vx & 0x0F)
		if err != nil {
			return err
		}
		if pressed {
			s.reg.pc += 2
		}

	case OpSknp:
		vx, err := s.reg.Read(in.X)
		if err != nil {
			return err
		}
		pressed, err := s.keys.Pressed(vx & 0x0F)
		if err != nil {
			return err
		}
		if !pressed {
			s.reg.pc += 2
		}

	case OpLdVxDt:
		if err := s.reg.Write(in.X, s.timers.delay); err != nil {
			return err
		}

	case OpGetKey:
		// The first execution arms the wait and discards stale edges; the
		// instruction then re-fetches each tick until a press edge lands.
		if !s.keys.waiting {
			s.keys.waiting = true
			s.keys.edge = -1
		}
		if s.keys.edge < 0 {
			advance = false
			break
		}
		if err := s.reg.Write(in.X, byte(s.keys.edge)); err != nil {
			return err
		}
		s.keys.waiting = false

	case OpLdDtVx:
		vx, err := s.reg.Read(in.X)
		if err != nil {
			return err
		}
		s.timers.delay = vx

	case OpLdStVx:
		vx, err := s.reg.Read(in.X)
		if err != nil {
			return err
		}
		s.timers.sound = vx

	case OpAddI:
		vx, err := s.reg.Read(in.X)
		if err != nil {
			return err
		}
		s.reg.i += uint16(vx)

	case OpLdFont:
		vx, err := s.reg.Read(in.X)
		if err != nil {
			return err
		}
		s.reg.i = 5 * uint16(vx&0x0F)

	case OpBcd:
		vx, err := s.reg.Read(in.X)
		if err != nil {
			return err
		}
		if int(s.reg.i) < memorySize && int(s.reg.i)+3 > memorySize {
			return InvalidMemoryAccessError{Addr: memorySize}
		}
		if err := s.writeMem(s.reg.i, vx/100); err != nil {
			return err
		}
		if err := s.writeMem(s.reg.i+1, vx/10%10); err != nil {
			return err
		}
		if err := s.writeMem(s.reg.i+2, vx%10); err != nil {
			return err
		}

	case OpRegDump:
		// I itself stays unchanged
		if int(s.reg.i) < memorySize && int(s.reg.i)+int(in.X)+1 > memorySize {
			return InvalidMemoryAccessError{Addr: memorySize}
		}
		for r := byte(0); r <= in.X; r++ {
			v, err := s.reg.Read(r)
			if err != nil {
				return err
			}
			if err := s.writeMem(s.reg.i+uint16(r), v); err != nil {
				return err
			}
		}

	case OpRegLoad:
		if int(s.reg.i) < memorySize && int(s.reg.i)+int(in.X)+1 > memorySize {
			return InvalidMemoryAccessError{Addr: memorySize}
		}
		for r := byte(0); r <= in.X; r++ {
			v, err := s.readMem(s.reg.i + uint16(r))
			if err != nil {
				return err
			}
			if err := s.reg.Write(r, v); err != nil {
				return err
			}
		}
	}

	if advance {
		s.reg.pc += 2
	}
	return nil
}

func (s *System) readPair(in Instr) (vx, vy byte, err error) {
	if vx, err = s.reg.Read(in.X); err != nil {
		return 0, 0, err
	}
	if vy, err = s.reg.Read(in.Y); err != nil {
		return 0, 0, err
	}
	return vx, vy, nil
}

// draw XOR-blits the N-row sprite at I to (Vx, Vy). The anchor and every
// subsequent pixel wrap modulo the screen size on both axes. VF reports
// whether any set pixel was unset, observed before the XOR lands.
func (s *System) draw(in Instr) error {
	vx, vy, err := s.readPair(in)
	if err != nil {
		return err
	}

	collision := false
	for row := byte(0); row < in.N; row++ {
		line, err := s.readMem(s.reg.i + uint16(row))
		if err != nil {
			return err
		}
		y := (vy + row) % ScreenHeight
		for bit := byte(0); bit < 8; bit++ {
			x := (vx + bit) % ScreenWidth
			if s.drawPixel(x, y, line>>(7-bit)&1 != 0) {
				collision = true
			}
		}
	}

	var flag byte
	if collision {
		flag = 1
	}
	return s.reg.Write(0xF, flag)
}
