package radius_test

import (
	"crypto/md5" //nolint:gosec // test replicates RFC 3748 EAP-MD5 math independently
	"encoding/binary"
	"testing"

	"github.com/wichert/goradius/internal/raddict"
	"github.com/wichert/goradius/internal/radius"
)

// TestEAPMD5TwoFlightChaining exercises the client side of an EAP-MD5
// exchange: the first Access-Request carries an EAP-Response/Identity,
// the server's Access-Challenge carries an EAP-Request/MD5-Challenge plus
// a State attribute, and the second Access-Request must answer with
// MD5(eap_id||password||challenge) while preserving State.
func TestEAPMD5TwoFlightChaining(t *testing.T) {
	t.Parallel()

	dict := raddict.Standard()
	secret := []byte("radsec")

	first := radius.New(radius.CodeAccessRequest, dict, secret)
	first.ID = 9
	if err := first.SetEAPIdentityResponse("bob"); err != nil {
		t.Fatalf("set eap identity: %v", err)
	}

	eapMsg, err := first.GetRaw("EAP-Message")
	if err != nil || len(eapMsg) != 1 {
		t.Fatalf("getraw eap-message: %v", err)
	}
	if eapMsg[0][0] != 2 { // EAP-Response
		t.Fatalf("code = %d, want 2 (Response)", eapMsg[0][0])
	}
	if eapMsg[0][1] != first.ID {
		t.Fatalf("eap id = %d, want packet id %d", eapMsg[0][1], first.ID)
	}

	// Build the server's Access-Challenge by hand: EAP-Request/MD5-Challenge
	// plus a State attribute that must survive into the second request.
	const eapID = 55
	challenge := []byte("0123456789abcdef")
	state := []byte("opaque-session-state")

	typeData := append([]byte{byte(len(challenge))}, challenge...)
	eapReq := make([]byte, 4, 5+len(typeData))
	eapReq[0] = 1 // EAP Request
	eapReq[1] = eapID
	binary.BigEndian.PutUint16(eapReq[2:4], uint16(5+len(typeData)))
	eapReq = append(eapReq, 4) // MD5-Challenge
	eapReq = append(eapReq, typeData...)

	serverChallenge := radius.New(radius.CodeAccessChallenge, dict, secret)
	serverChallenge.ID = first.ID
	if err := serverChallenge.Set("EAP-Message", eapReq); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := serverChallenge.Set("State", state); err != nil {
		t.Fatalf("set: %v", err)
	}

	gotID, gotChallenge, err := serverChallenge.EAPMD5Challenge()
	if err != nil {
		t.Fatalf("eap md5 challenge: %v", err)
	}
	if gotID != eapID {
		t.Fatalf("eap id = %d, want %d", gotID, eapID)
	}
	if string(gotChallenge) != string(challenge) {
		t.Fatalf("challenge = %q, want %q", gotChallenge, challenge)
	}

	second := radius.New(radius.CodeAccessRequest, dict, secret)
	second.ID = first.ID
	if err := second.SetEAPMD5ChallengeResponse(gotID, "hunter2", gotChallenge); err != nil {
		t.Fatalf("set eap md5 response: %v", err)
	}
	if err := radius.CopyState(second, serverChallenge); err != nil {
		t.Fatalf("copy state: %v", err)
	}

	gotState, err := second.Get("State")
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if len(gotState) != 1 {
		t.Fatalf("got %d State values, want 1", len(gotState))
	}

	eapRaw, err := second.GetRaw("EAP-Message")
	if err != nil || len(eapRaw) != 1 {
		t.Fatalf("getraw eap-message: %v", err)
	}

	h := md5.New() //nolint:gosec // G401
	h.Write([]byte{gotID})
	h.Write([]byte("hunter2"))
	h.Write(challenge)
	wantDigest := h.Sum(nil)

	// eapRaw layout: code(1) id(1) length(2) type(1) value-size(1) value
	if eapRaw[0][0] != 2 {
		t.Fatalf("code = %d, want 2 (Response)", eapRaw[0][0])
	}
	if eapRaw[0][4] != 4 {
		t.Fatalf("eap type = %d, want 4 (MD5-Challenge)", eapRaw[0][4])
	}
	valueSize := int(eapRaw[0][5])
	gotDigest := eapRaw[0][6 : 6+valueSize]
	if string(gotDigest) != string(wantDigest) {
		t.Fatalf("digest = %x, want %x", gotDigest, wantDigest)
	}
}
