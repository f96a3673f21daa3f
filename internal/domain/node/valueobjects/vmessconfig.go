package valueobjects

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// VMess transport types recognized by spec.
const (
	VMessTransportTCP  = "tcp"
	VMessTransportWS   = "ws"
	VMessTransportH2   = "h2"
	VMessTransportQUIC = "quic"
	VMessTransportKCP  = "kcp"
)

var validVMessTransports = map[string]bool{
	VMessTransportTCP:  true,
	VMessTransportWS:   true,
	VMessTransportH2:   true,
	VMessTransportQUIC: true,
	VMessTransportKCP:  true,
}

// VMessParams is the canonical parameter record carried by a VMess Node.
type VMessParams struct {
	UUID       string
	AlterID    int
	Cipher     string // "auto" when unspecified
	Transport  string // tcp, ws, h2, quic, kcp
	Path       string
	HostHeader string
	TLS        bool
	FakeType   string
}

// NewVMessParams builds a VMessParams applying spec invariant 3: alter_id
// must be non-negative, and "ws" transport defaults Path to "/" and
// HostHeader to server when either is blank. id must parse as a UUID;
// some Kitsunebi-style links carry a bare non-UUID token here, which is
// rejected rather than silently accepted, since every documented VMess
// dialect specifies a UUID client id.
func NewVMessParams(server string, id string, alterID int, cipher, transport, path, hostHeader string, tls bool, fakeType string) (*VMessParams, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("vmess id is not a valid uuid: %s", id)
	}
	if alterID < 0 {
		return nil, fmt.Errorf("vmess alter_id must be non-negative, got %d", alterID)
	}
	if cipher == "" {
		cipher = "auto"
	}
	if transport == "" {
		transport = VMessTransportTCP
	}
	if !validVMessTransports[transport] {
		return nil, fmt.Errorf("unsupported vmess transport: %s", transport)
	}

	p := &VMessParams{
		UUID:       id,
		AlterID:    alterID,
		Cipher:     cipher,
		Transport:  transport,
		Path:       path,
		HostHeader: hostHeader,
		TLS:        tls,
		FakeType:   fakeType,
	}

	if p.Transport == VMessTransportWS {
		if p.Path == "" {
			p.Path = "/"
		}
		if p.HostHeader == "" {
			p.HostHeader = server
		}
	}

	return p, nil
}

// VMessLinkJSON is the v2rayN JSON-in-base64 wire shape carried by
// vmess:// links, both on decode and on emit (ToURI below).
type VMessLinkJSON struct {
	V    string `json:"v"`
	PS   string `json:"ps"`
	Add  string `json:"add"`
	Port string `json:"port"`
	ID   string `json:"id"`
	Aid  string `json:"aid"`
	Scy  string `json:"scy,omitempty"`
	Net  string `json:"net"`
	Type string `json:"type"`
	Host string `json:"host"`
	Path string `json:"path"`
	TLS  string `json:"tls"`
	SNI  string `json:"sni,omitempty"`
}

// FromLinkJSON maps the v2rayN wire fields onto host/port/remarks and a
// VMessParams (which carries the uuid), per the field mapping in spec.md
// §4.2 (a v=1 link's combined "host;path" field is split here before
// normalization).
func FromLinkJSON(j VMessLinkJSON) (server string, port uint16, remarks string, params *VMessParams, err error) {
	p, convErr := strconv.Atoi(strings.TrimSpace(j.Port))
	if convErr != nil || p < 1 || p > 65535 {
		return "", 0, "", nil, fmt.Errorf("vmess link: invalid port %q", j.Port)
	}
	alterID, _ := strconv.Atoi(strings.TrimSpace(j.Aid))
	if alterID < 0 {
		alterID = 0
	}

	hostHeader := j.Host
	path := j.Path
	if j.V == "1" && path == "" && hostHeader != "" {
		if h, rest, ok := strings.Cut(hostHeader, ";"); ok {
			hostHeader, path = h, rest
		}
	}

	params, err = NewVMessParams(j.Add, j.ID, alterID, j.Scy, j.Net, path, hostHeader, j.TLS == "tls", j.Type)
	if err != nil {
		return "", 0, "", nil, err
	}
	return j.Add, uint16(p), j.PS, params, nil
}

// ToURI renders the v2rayN JSON-in-base64 form, without the base64 step
// itself since that is the emitter's concern (it chooses padding/newlines).
func (p *VMessParams) ToURI(server string, port uint16, remarks string) (string, error) {
	j := VMessLinkJSON{
		V:    "2",
		PS:   remarks,
		Add:  server,
		Port: strconv.Itoa(int(port)),
		ID:   p.UUID,
		Aid:  strconv.Itoa(p.AlterID),
		Scy:  p.Cipher,
		Net:  p.Transport,
		Type: "none",
	}
	if p.TLS {
		j.TLS = "tls"
	}
	switch p.Transport {
	case VMessTransportWS, VMessTransportH2:
		j.Host = p.HostHeader
		j.Path = p.Path
	}
	if p.FakeType != "" {
		j.Type = p.FakeType
	}

	data, err := json.Marshal(j)
	if err != nil {
		return "", fmt.Errorf("marshal vmess link json: %w", err)
	}
	return string(data), nil
}
