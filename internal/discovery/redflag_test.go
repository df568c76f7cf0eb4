package discovery

import "testing"

func TestContainsRedFlag(t *testing.T) {
	cases := []struct {
		name        string
		title       string
		company     string
		description string
		flags       []string
		want        bool
	}{
		{
			name:        "empty flag list never matches",
			title:       "Unpaid internship",
			description: "commission only, no salary",
			flags:       nil,
			want:        false,
		},
		{
			name:  "case insensitive match in title",
			title: "Unpaid internship — marketing",
			flags: []string{"unpaid"},
			want:  true,
		},
		{
			name:        "match in description",
			title:       "Sales Representative",
			description: "This is a Commission Only role with uncapped upside",
			flags:       []string{"commission only"},
			want:        true,
		},
		{
			name:    "match in company name",
			title:   "Software Engineer",
			company: "MLM Ventures Ltd",
			flags:   []string{"mlm"},
			want:    true,
		},
		{
			name:        "no term present",
			title:       "Backend Developer",
			description: "Competitive salary, remote friendly",
			flags:       []string{"unpaid", "commission only"},
			want:        false,
		},
		{
			name:  "empty flag strings are skipped",
			title: "Backend Developer",
			flags: []string{"", ""},
			want:  false,
		},
		{
			name:        "substring across field boundary does not false-positive",
			title:       "Dev",
			company:     "un",
			description: "paid relocation",
			flags:       []string{"unpaid"},
			want:        false,
		},
		{
			name:  "uppercase flag matches lowercase text",
			title: "stage non rémunéré, unpaid",
			flags: []string{"UNPAID"},
			want:  true,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ContainsRedFlag(c.title, c.company, c.description, c.flags)
			if got != c.want {
				t.Errorf("ContainsRedFlag(%q, %q, %q, %v) = %v, want %v",
					c.title, c.company, c.description, c.flags, got, c.want)
			}
		})
	}
}
