package service

import "testing"

func TestPostInputSlug(t *testing.T) {
	tests := []struct {
		name string
		in   PostInput
		want string
	}{
		{
			name: "derived from title",
			in:   PostInput{Title: "Créer sa SARL au Maroc : le guide"},
			want: "creer-sa-sarl-au-maroc-le-guide",
		},
		{
			name: "explicit slug wins",
			in:   PostInput{Title: "Un titre", Slug: "mon-slug-choisi"},
			want: "mon-slug-choisi",
		},
		{
			name: "explicit slug is normalized",
			in:   PostInput{Title: "Un titre", Slug: "  Mon Slug Choisi  "},
			want: "mon-slug-choisi",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.slugOrDerived(); got != tt.want {
				t.Errorf("slugOrDerived() = %q, want %q", got, tt.want)
			}
		})
	}
}
