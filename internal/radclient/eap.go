package radclient

import (
	"context"
	"fmt"

	"github.com/wichert/goradius/internal/radius"
)

// ExchangeEAPMD5 performs a full EAP-MD5 authentication (RFC 3748 §4,
// RFC 3579 §3.1): an initial Access-Request carrying an
// EAP-Response/Identity, and — if the server answers with an
// Access-Challenge carrying an EAP-Request/MD5-Challenge — a second
// Access-Request carrying the MD5(id||password||challenge) response
// with the challenge's State copied across.
func (c *Client) ExchangeEAPMD5(ctx context.Context, identity, password string) (*radius.Packet, error) {
	first := c.host.CreateAuthPacket(radius.CodeAccessRequest)
	if err := first.SetEAPIdentityResponse(identity); err != nil {
		return nil, fmt.Errorf("radclient: eap-md5: %w", err)
	}

	reply, err := c.Exchange(ctx, first)
	if err != nil {
		return nil, err
	}
	if reply.Code != radius.CodeAccessChallenge {
		return reply, nil
	}

	eapID, challenge, err := reply.EAPMD5Challenge()
	if err != nil {
		return nil, fmt.Errorf("radclient: eap-md5: challenge: %w", err)
	}

	second := c.host.CreateAuthPacket(radius.CodeAccessRequest)
	if err := second.SetEAPMD5ChallengeResponse(eapID, password, challenge); err != nil {
		return nil, fmt.Errorf("radclient: eap-md5: %w", err)
	}
	if err := radius.CopyState(second, reply); err != nil {
		return nil, fmt.Errorf("radclient: eap-md5: %w", err)
	}

	return c.Exchange(ctx, second)
}
