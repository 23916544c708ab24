package command

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Server executes framed commands against a Surface, normally a Local
// programmer, so a host on the far side of a serial link can drive the
// wires.
type Server struct {
	rw io.ReadWriter
	s  Surface
}

// NewServer binds a transport to a surface.
func NewServer(rw io.ReadWriter, s Surface) *Server {
	return &Server{rw: rw, s: s}
}

// Serve dispatches commands until the transport closes. A clean EOF between
// frames returns nil.
func (srv *Server) Serve() error {
	for {
		if err := srv.serveOne(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func (srv *Server) serveOne() error {
	var cmd [1]byte
	if _, err := io.ReadFull(srv.rw, cmd[:]); err != nil {
		return err
	}

	resp, err := srv.dispatch(cmd[0])
	if err != nil {
		return err
	}
	_, err = srv.rw.Write(resp)
	return err
}

func (srv *Server) dispatch(cmd byte) ([]byte, error) {
	switch cmd {
	case CmdPhyInit:
		if err := srv.s.PhyInit(); err != nil {
			return nil, err
		}
		return []byte{cmd}, nil

	case CmdPhyReset:
		ok, err := srv.s.PhyReset()
		if err != nil {
			return nil, err
		}
		return []byte{cmd, boolByte(ok)}, nil

	case CmdPhyStop:
		if err := srv.s.PhyStop(); err != nil {
			return nil, err
		}
		return []byte{cmd}, nil

	case CmdTapInit:
		st, err := srv.s.TapInit()
		if err != nil {
			return nil, err
		}
		return []byte{cmd, byte(st)}, nil

	case CmdTapState:
		state, err := srv.s.TapState()
		if err != nil {
			return nil, err
		}
		return []byte{cmd, state}, nil

	case CmdTapReset:
		if err := srv.s.TapReset(); err != nil {
			return nil, err
		}
		return []byte{cmd}, nil

	case CmdTapGotoState:
		args, err := srv.args(1)
		if err != nil {
			return nil, err
		}
		if err := srv.s.TapGotoState(args[0]); err != nil {
			return nil, err
		}
		return []byte{cmd}, nil

	case CmdTapIR:
		args, err := srv.args(1)
		if err != nil {
			return nil, err
		}
		in, err := srv.s.TapIR(args[0])
		if err != nil {
			return nil, err
		}
		return []byte{cmd, in}, nil

	case CmdTapDR:
		args, err := srv.args(5)
		if err != nil {
			return nil, err
		}
		out := binary.LittleEndian.Uint32(args)
		bits := args[4]
		if !ValidDRWidth(bits) {
			return nil, fmt.Errorf("command: unsupported DR width %d", bits)
		}
		in, err := srv.s.TapDR(out, bits)
		if err != nil {
			return nil, err
		}
		resp := make([]byte, 5)
		resp[0] = cmd
		binary.LittleEndian.PutUint32(resp[1:], in)
		return resp, nil

	case CmdTapBypass:
		if err := srv.s.TapBypass(); err != nil {
			return nil, err
		}
		return []byte{cmd}, nil

	case CmdTapIDCode:
		id, err := srv.s.TapIDCode()
		if err != nil {
			return nil, err
		}
		resp := make([]byte, 5)
		resp[0] = cmd
		binary.LittleEndian.PutUint32(resp[1:], id)
		return resp, nil

	case CmdTapIdleClocks:
		args, err := srv.args(1)
		if err != nil {
			return nil, err
		}
		if err := srv.s.TapIdleClocks(args[0]); err != nil {
			return nil, err
		}
		return []byte{cmd}, nil

	case CmdTapCodescanRead:
		args, err := srv.args(2)
		if err != nil {
			return nil, err
		}
		b, err := srv.s.TapCodescanRead(binary.LittleEndian.Uint16(args))
		if err != nil {
			return nil, err
		}
		return []byte{cmd, b}, nil

	case CmdIcpInit:
		if err := srv.s.IcpInit(); err != nil {
			return nil, err
		}
		return []byte{cmd}, nil

	case CmdIcpVerify:
		ok, err := srv.s.IcpVerify()
		if err != nil {
			return nil, err
		}
		return []byte{cmd, boolByte(ok)}, nil

	case CmdIcpRead:
		args, err := srv.args(4)
		if err != nil {
			return nil, err
		}
		addr := binary.LittleEndian.Uint16(args)
		size := binary.LittleEndian.Uint16(args[2:])
		data, err := srv.s.IcpRead(addr, size)
		if err != nil {
			return nil, err
		}
		resp := make([]byte, 3+len(data))
		resp[0] = cmd
		binary.LittleEndian.PutUint16(resp[1:], uint16(len(data)))
		copy(resp[3:], data)
		return resp, nil

	case CmdIcpErase:
		args, err := srv.args(2)
		if err != nil {
			return nil, err
		}
		ok, err := srv.s.IcpErase(binary.LittleEndian.Uint16(args))
		if err != nil {
			return nil, err
		}
		return []byte{cmd, boolByte(ok)}, nil

	case CmdIcpWrite:
		args, err := srv.args(4)
		if err != nil {
			return nil, err
		}
		addr := binary.LittleEndian.Uint16(args)
		n := binary.LittleEndian.Uint16(args[2:])
		data, err := srv.args(int(n))
		if err != nil {
			return nil, err
		}
		ok, err := srv.s.IcpWrite(addr, data)
		if err != nil {
			return nil, err
		}
		return []byte{cmd, boolByte(ok)}, nil
	}

	return nil, fmt.Errorf("command: unknown command 0x%02X", cmd)
}

func (srv *Server) args(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(srv.rw, buf); err != nil {
		return nil, fmt.Errorf("command: truncated request: %w", err)
	}
	return buf, nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
