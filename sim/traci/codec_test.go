package traci

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestMessage_Bytes_PrependsTotalLength(t *testing.T) {
	// GIVEN one short command with 3 content bytes
	var m message
	m.appendCommand(cmdGetVersion, []byte{1, 2, 3})

	out := m.Bytes()

	// THEN the header counts itself: 4 + (2 + 3)
	if got := binary.BigEndian.Uint32(out[:4]); got != 9 {
		t.Errorf("total length: got %d, want 9", got)
	}
	// AND the command carries its one-byte length (2 + 3) and identifier
	if out[4] != 5 || out[5] != cmdGetVersion {
		t.Errorf("command header: got [%d 0x%02x], want [5 0x%02x]", out[4], out[5], cmdGetVersion)
	}
	if !bytes.Equal(out[6:], []byte{1, 2, 3}) {
		t.Errorf("content: got %v", out[6:])
	}
}

func TestMessage_AppendCommand_ExtendedLength(t *testing.T) {
	// GIVEN content too large for the one-byte length form
	content := make([]byte, 300)
	var m message
	m.appendCommand(cmdSetTrafficLightVar, content)

	// THEN the frame uses the 0x00 marker plus an int32 length of
	// marker + int32 + identifier + content
	if m.buf[0] != 0 {
		t.Fatalf("extended marker: got 0x%02x, want 0x00", m.buf[0])
	}
	if got := binary.BigEndian.Uint32(m.buf[1:5]); got != 306 {
		t.Errorf("extended length: got %d, want 306", got)
	}
	if m.buf[5] != cmdSetTrafficLightVar {
		t.Errorf("command identifier: got 0x%02x", m.buf[5])
	}
	if len(m.buf) != 306 {
		t.Errorf("frame length: got %d, want 306", len(m.buf))
	}
}

func TestReadCommandHeader_RoundTrip(t *testing.T) {
	// GIVEN frames in both length forms
	var m message
	m.appendCommand(cmdGetTrafficLightVar, []byte{0xAA})
	m.appendCommand(cmdGetLaneVar, make([]byte, 300))

	s := &storage{buf: m.buf}

	// WHEN both headers are decoded in sequence
	cmd, n, err := s.readCommandHeader()
	if err != nil {
		t.Fatalf("short header: %v", err)
	}
	if cmd != cmdGetTrafficLightVar || n != 1 {
		t.Errorf("short header: got cmd 0x%02x len %d, want 0x%02x len 1", cmd, n, cmdGetTrafficLightVar)
	}
	s.pos += n

	cmd, n, err = s.readCommandHeader()
	if err != nil {
		t.Fatalf("extended header: %v", err)
	}
	// THEN the extended length excludes its 6 header bytes
	if cmd != cmdGetLaneVar || n != 300 {
		t.Errorf("extended header: got cmd 0x%02x len %d, want 0x%02x len 300", cmd, n, cmdGetLaneVar)
	}
}

func TestStorage_Readers_RoundTrip(t *testing.T) {
	var p packer
	p.writeUByte(0x42)
	p.writeInt(-7)
	p.writeDouble(13.25)
	p.writeString("228470926_0")

	s := &storage{buf: p.buf}

	if b, err := s.readUByte(); err != nil || b != 0x42 {
		t.Errorf("readUByte: got %v, %v", b, err)
	}
	if v, err := s.readInt(); err != nil || v != -7 {
		t.Errorf("readInt: got %v, %v", v, err)
	}
	if v, err := s.readDouble(); err != nil || v != 13.25 {
		t.Errorf("readDouble: got %v, %v", v, err)
	}
	if v, err := s.readString(); err != nil || v != "228470926_0" {
		t.Errorf("readString: got %q, %v", v, err)
	}
	if s.remaining() != 0 {
		t.Errorf("remaining: got %d, want 0", s.remaining())
	}
}

func TestStorage_ReadStringList(t *testing.T) {
	var p packer
	p.writeInt(2)
	p.writeString("nb_0")
	p.writeString("nb_1")

	s := &storage{buf: p.buf}
	got, err := s.readStringList()
	if err != nil {
		t.Fatalf("readStringList: %v", err)
	}
	if len(got) != 2 || got[0] != "nb_0" || got[1] != "nb_1" {
		t.Errorf("readStringList: got %v", got)
	}
}

func TestStorage_Truncated_Errors(t *testing.T) {
	s := &storage{buf: []byte{0, 0, 0}}
	if _, err := s.readInt(); err == nil {
		t.Error("readInt on 3 bytes: got nil error")
	}

	var p packer
	p.writeInt(100) // string claims 100 bytes, none follow
	s = &storage{buf: p.buf}
	if _, err := s.readString(); err == nil {
		t.Error("readString with truncated payload: got nil error")
	}
}

func TestStorage_ExpectType_Mismatch(t *testing.T) {
	s := &storage{buf: []byte{typeInteger}}
	if err := s.expectType(typeDouble); err == nil {
		t.Error("expectType on mismatched tag: got nil error")
	}
}

func TestReadMessage_FromStream(t *testing.T) {
	// GIVEN a wire message built by the sending side
	var m message
	m.appendCommand(cmdSimStep, []byte{typeDouble, 0, 0, 0, 0, 0, 0, 0, 0})

	s, err := readMessage(bytes.NewReader(m.Bytes()))
	if err != nil {
		t.Fatalf("readMessage: %v", err)
	}

	cmd, n, err := s.readCommandHeader()
	if err != nil {
		t.Fatalf("readCommandHeader: %v", err)
	}
	if cmd != cmdSimStep || n != 9 {
		t.Errorf("decoded command: got 0x%02x len %d, want 0x%02x len 9", cmd, n, cmdSimStep)
	}
}

func TestGetVarContent_Layout(t *testing.T) {
	got := getVarContent(varTLCurrentPhase, "TL1")

	want := []byte{varTLCurrentPhase, 0, 0, 0, 3, 'T', 'L', '1'}
	if !bytes.Equal(got, want) {
		t.Errorf("getVarContent: got %v, want %v", got, want)
	}
}
