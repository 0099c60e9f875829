package raddict

import "github.com/wichert/goradius/internal/radcodec"

// Standard returns a Dictionary pre-populated with the core RFC
// 2865/2866/2868/3576/3579 attributes this module's client, server, and
// test suite exercise. This is additive scaffolding so the library is
// usable standalone, not a substitute for a real dictionary-file loader
// — RegisterAttribute/RegisterValue/RegisterVendor are the same entry
// points such a loader would call.
func Standard() *Dictionary {
	d := New()
	mustRegisterStandardAttributes(d)
	mustRegisterStandardValues(d)
	return d
}

// mustRegisterStandardAttributes registers the baseline ATTRIBUTE set.
// Panics on collision: this runs once at package-controlled call sites
// with a fixed, hand-checked table, so a collision here is a programmer
// error in this file, not a runtime condition callers must handle.
func mustRegisterStandardAttributes(d *Dictionary) {
	attrs := []AttrDef{
		{Name: "User-Name", Code: 1, Type: radcodec.TypeString},
		{Name: "User-Password", Code: 2, Type: radcodec.TypeString, Encrypt: 1},
		{Name: "CHAP-Password", Code: 3, Type: radcodec.TypeOctets},
		{Name: "NAS-IP-Address", Code: 4, Type: radcodec.TypeIPAddr},
		{Name: "NAS-Port", Code: 5, Type: radcodec.TypeInteger},
		{Name: "Service-Type", Code: 6, Type: radcodec.TypeInteger},
		{Name: "Framed-Protocol", Code: 7, Type: radcodec.TypeInteger},
		{Name: "Framed-IP-Address", Code: 8, Type: radcodec.TypeIPAddr},
		{Name: "Framed-IP-Netmask", Code: 9, Type: radcodec.TypeIPAddr},
		{Name: "Framed-Routing", Code: 10, Type: radcodec.TypeInteger},
		{Name: "Filter-Id", Code: 11, Type: radcodec.TypeString},
		{Name: "Framed-MTU", Code: 12, Type: radcodec.TypeInteger},
		{Name: "Framed-Compression", Code: 13, Type: radcodec.TypeInteger},
		{Name: "Reply-Message", Code: 18, Type: radcodec.TypeString},
		{Name: "Callback-Number", Code: 19, Type: radcodec.TypeString},
		{Name: "Framed-Route", Code: 22, Type: radcodec.TypeString},
		{Name: "State", Code: 24, Type: radcodec.TypeOctets},
		{Name: "Class", Code: 25, Type: radcodec.TypeOctets},
		{Name: "Vendor-Specific", Code: 26, Type: radcodec.TypeOctets},
		{Name: "Session-Timeout", Code: 27, Type: radcodec.TypeInteger},
		{Name: "Idle-Timeout", Code: 28, Type: radcodec.TypeInteger},
		{Name: "Termination-Action", Code: 29, Type: radcodec.TypeInteger},
		{Name: "Called-Station-Id", Code: 30, Type: radcodec.TypeString},
		{Name: "Calling-Station-Id", Code: 31, Type: radcodec.TypeString},
		{Name: "NAS-Identifier", Code: 32, Type: radcodec.TypeString},
		{Name: "Proxy-State", Code: 33, Type: radcodec.TypeOctets},
		{Name: "Acct-Status-Type", Code: 40, Type: radcodec.TypeInteger},
		{Name: "Acct-Delay-Time", Code: 41, Type: radcodec.TypeInteger},
		{Name: "Acct-Input-Octets", Code: 42, Type: radcodec.TypeInteger},
		{Name: "Acct-Output-Octets", Code: 43, Type: radcodec.TypeInteger},
		{Name: "Acct-Session-Id", Code: 44, Type: radcodec.TypeString},
		{Name: "Acct-Authentic", Code: 45, Type: radcodec.TypeInteger},
		{Name: "Acct-Session-Time", Code: 46, Type: radcodec.TypeInteger},
		{Name: "Acct-Input-Packets", Code: 47, Type: radcodec.TypeInteger},
		{Name: "Acct-Output-Packets", Code: 48, Type: radcodec.TypeInteger},
		{Name: "Acct-Terminate-Cause", Code: 49, Type: radcodec.TypeInteger},
		{Name: "Acct-Multi-Session-Id", Code: 50, Type: radcodec.TypeString},
		{Name: "Acct-Link-Count", Code: 51, Type: radcodec.TypeInteger},
		{Name: "CHAP-Challenge", Code: 60, Type: radcodec.TypeOctets},
		{Name: "NAS-Port-Type", Code: 61, Type: radcodec.TypeInteger},
		{Name: "Port-Limit", Code: 62, Type: radcodec.TypeInteger},
		{Name: "Tunnel-Type", Code: 64, Type: radcodec.TypeInteger, HasTag: true},
		{Name: "Tunnel-Medium-Type", Code: 65, Type: radcodec.TypeInteger, HasTag: true},
		{Name: "Tunnel-Client-Endpoint", Code: 66, Type: radcodec.TypeString, HasTag: true},
		{Name: "Tunnel-Server-Endpoint", Code: 67, Type: radcodec.TypeString, HasTag: true},
		{Name: "Tunnel-Password", Code: 69, Type: radcodec.TypeString, HasTag: true, Encrypt: 2},
		{Name: "Framed-IPv6-Prefix", Code: 97, Type: radcodec.TypeIPv6Prefix},
		{Name: "Ascend-Data-Filter", Code: 242, Type: radcodec.TypeAbinary},
		{Name: "Message-Authenticator", Code: 80, Type: radcodec.TypeOctets},
		{Name: "EAP-Message", Code: 79, Type: radcodec.TypeOctets},
		{Name: "NAS-IPv6-Address", Code: 95, Type: radcodec.TypeIPv6Addr},
		{Name: "Error-Cause", Code: 101, Type: radcodec.TypeInteger},
	}

	for i := range attrs {
		def := attrs[i]
		if err := d.RegisterAttribute(&def); err != nil {
			panic("raddict: standard dictionary: " + err.Error())
		}
	}
}

// mustRegisterStandardValues registers the VALUE tables exercised by the
// client/server and test suite.
func mustRegisterStandardValues(d *Dictionary) {
	values := []struct {
		attr string
		name string
		val  int
	}{
		{"Acct-Status-Type", "Start", 1},
		{"Acct-Status-Type", "Stop", 2},
		{"Acct-Status-Type", "Interim-Update", 3},
		{"Acct-Status-Type", "Accounting-On", 7},
		{"Acct-Status-Type", "Accounting-Off", 8},

		{"Acct-Authentic", "RADIUS", 1},
		{"Acct-Authentic", "Local", 2},
		{"Acct-Authentic", "Remote", 3},

		{"Acct-Terminate-Cause", "User-Request", 1},
		{"Acct-Terminate-Cause", "Lost-Carrier", 2},
		{"Acct-Terminate-Cause", "Idle-Timeout", 4},
		{"Acct-Terminate-Cause", "Session-Timeout", 5},
		{"Acct-Terminate-Cause", "Admin-Reset", 6},
		{"Acct-Terminate-Cause", "NAS-Reboot", 9},

		{"Service-Type", "Login-User", 1},
		{"Service-Type", "Framed-User", 2},
		{"Service-Type", "Callback-Login-User", 3},
		{"Service-Type", "Callback-Framed-User", 4},
		{"Service-Type", "Authenticate-Only", 8},

		{"Framed-Protocol", "PPP", 1},
		{"Framed-Protocol", "SLIP", 2},

		{"NAS-Port-Type", "Async", 0},
		{"NAS-Port-Type", "Sync", 1},
		{"NAS-Port-Type", "Wireless-802.11", 19},

		{"Tunnel-Type", "PPTP", 1},
		{"Tunnel-Type", "L2TP", 3},
		{"Tunnel-Type", "VLAN", 13},

		{"Tunnel-Medium-Type", "IPv4", 1},
		{"Tunnel-Medium-Type", "IPv6", 2},

		{"Error-Cause", "Residual-Session-Context-Removed", 201},
		{"Error-Cause", "Invalid-EAP-Packet", 202},
		{"Error-Cause", "Unsupported-Attribute", 401},
		{"Error-Cause", "Missing-Attribute", 402},
		{"Error-Cause", "NAS-Identification-Mismatch", 403},
		{"Error-Cause", "Invalid-Request", 404},
		{"Error-Cause", "Unsupported-Service", 405},
		{"Error-Cause", "Unsupported-Extension", 406},
		{"Error-Cause", "Administratively-Prohibited", 501},
		{"Error-Cause", "Request-Not-Routable", 502},
		{"Error-Cause", "Session-Context-Not-Found", 503},
		{"Error-Cause", "Session-Context-Not-Removable", 504},
		{"Error-Cause", "Other-Proxy-Processing-Error", 505},
		{"Error-Cause", "Resources-Unavailable", 506},
		{"Error-Cause", "Request-Initiated", 507},
	}

	for _, v := range values {
		if err := d.RegisterValue(v.attr, v.name, v.val); err != nil {
			panic("raddict: standard dictionary: " + err.Error())
		}
	}
}
