package visibility

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		name   string
		policy Policy
		input  string
		want   Level
	}{
		{name: "Public", policy: DefaultPolicy(), input: "speak", want: Public},
		{name: "Convention", policy: DefaultPolicy(), input: "_cache", want: Private},
		{name: "Strict", policy: DefaultPolicy(), input: "__secret", want: StrictPrivate},
		{name: "DunderStrictByDefault", policy: DefaultPolicy(), input: "__init__", want: StrictPrivate},
		{name: "DunderExempt", policy: Policy{PrivatePrefix: "_", StrictPrivatePrefix: "__", ExemptDunder: true}, input: "__init__", want: Public},
		{name: "BareDunderNotExempt", policy: Policy{PrivatePrefix: "_", StrictPrivatePrefix: "__", ExemptDunder: true}, input: "____", want: StrictPrivate},
		{name: "SingleUnderscore", policy: DefaultPolicy(), input: "_", want: Private},
		{name: "Empty", policy: DefaultPolicy(), input: "", want: Public},
		{name: "CustomMarkers", policy: Policy{PrivatePrefix: "m_", StrictPrivatePrefix: "m__"}, input: "m__x", want: StrictPrivate},
		{name: "CustomConvention", policy: Policy{PrivatePrefix: "m_", StrictPrivatePrefix: "m__"}, input: "m_x", want: Private},
		{name: "CustomIgnoresUnderscore", policy: Policy{PrivatePrefix: "m_", StrictPrivatePrefix: "m__"}, input: "_x", want: Public},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.policy.Classify(tc.input); got != tc.want {
				t.Errorf("Classify(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestIsPublic(t *testing.T) {
	p := DefaultPolicy()
	if !p.IsPublic("name") {
		t.Error("expected name to be public")
	}
	if p.IsPublic("_name") {
		t.Error("expected _name not to be public")
	}
}
