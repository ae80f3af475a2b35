package domain

import (
	"encoding/json"
	"time"
)

// Account is one row per authenticated identity. The uuid equals the
// identity-provider user id and never changes after creation.
type Account struct {
	UUID           string  `json:"uuid"`
	Email          string  `json:"email"`
	Name           string  `json:"name"`
	Bio            *string `json:"bio,omitempty"`
	Gender         *string `json:"gender,omitempty"`
	Specialization *string `json:"specialization,omitempty"`
	PicURL         *string `json:"pic_url,omitempty"`
	Tarif          int     `json:"tarif"`
	IsMember       bool    `json:"is_member"`
	IsBan          bool    `json:"is_ban"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Identity is the authenticated user identity resolved by the identity
// provider. UserID is the account primary key.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Optional is a tri-state JSON field: absent, explicit null, or a value.
// UnmarshalJSON only runs when the key is present, so Present=false means
// the caller omitted the field and it must be left untouched.
type Optional[T any] struct {
	Present bool
	Null    bool
	Value   T
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Present = true
	if string(data) == "null" {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Present || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Ptr returns the value as a nullable pointer, nil for explicit null.
func (o Optional[T]) Ptr() *T {
	if !o.Present || o.Null {
		return nil
	}
	v := o.Value
	return &v
}

// Some builds a present, non-null Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Present: true, Value: v}
}

// Null builds a present, explicit-null Optional.
func Null[T any]() Optional[T] {
	return Optional[T]{Present: true, Null: true}
}

// FieldPatch carries the mutable profile fields of an update request.
// Absent fields stay untouched; explicit nulls clear nullable fields.
type FieldPatch struct {
	Name           Optional[string] `json:"name"`
	Bio            Optional[string] `json:"bio"`
	Gender         Optional[string] `json:"gender"`
	Specialization Optional[string] `json:"specialization"`
}

// UpdatedFields is the minimal result of an update: only the fields that
// were part of the request, with their post-update values.
type UpdatedFields struct {
	Name           *string
	Bio            *string
	Gender         *string
	Specialization *string
}

// Genders is the closed set of accepted gender values.
var Genders = []string{
	"homme",
	"femme",
	"prefere_ne_pas_dire",
}

// Specializations is the closed set of accepted specialization values.
var Specializations = []string{
	"developpement_web",
	"developpement_mobile",
	"developpement_full_stack",
	"developpement_front_end",
	"developpement_back_end",
	"devops",
	"cybersecurite",
	"data_science",
	"intelligence_artificielle",
	"machine_learning",
	"designer_ux_ui",
	"administrateur_systeme",
	"chef_de_projet_it",
	"architecture_logicielle",
	"cloud_computing",
	"bases_de_donnees",
	"reseaux_telecommunications",
	"business_intelligence",
	"marketing_digital",
	"seo_sem",
	"e_commerce",
	"developpement_jeux_video",
	"support_technique",
	"consultant_it",
	"formation_it",
	"analyseur_affaires",
	"testeur_qa",
	"securite_informatique",
	"integration_systemes",
}
