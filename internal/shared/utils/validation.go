package utils

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	telephoneRegex = regexp.MustCompile(`^[0-9]{10}$`)

	GroupesSanguins = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}
	TypesChambre    = []string{"standard", "vip", "soins_intensifs", "urgence"}
	StatutsLit      = []string{"disponible", "occupe", "maintenance", "reserve"}
	StatutsRDV      = []string{"En attente", "Confirmé", "Annulé", "Terminé"}
	StatutsFacture  = []string{"en_attente", "payee", "annulee"}

	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators enregistre les règles métier sur le validateur de gin
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = fmt.Errorf("moteur de validation gin inattendu")
			return
		}

		v.RegisterTagNameFunc(fieldName)

		rules := map[string]validator.Func{
			"telephone":      func(fl validator.FieldLevel) bool { return telephoneRegex.MatchString(fl.Field().String()) },
			"groupe_sanguin": oneOf(GroupesSanguins),
			"chambre_type":   oneOf(TypesChambre),
			"lit_statut":     oneOf(StatutsLit),
			"rdv_statut":     oneOf(StatutsRDV),
			"facture_statut": oneOf(StatutsFacture),
			"date":           validDate,
		}
		for tag, fn := range rules {
			if err := v.RegisterValidation(tag, fn); err != nil {
				registerErr = fmt.Errorf("enregistrement règle %s: %w", tag, err)
				return
			}
		}
	})
	return registerErr
}

func oneOf(values []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		for _, allowed := range values {
			if value == allowed {
				return true
			}
		}
		return false
	}
}

func validDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateLayout, fl.Field().String())
	return err == nil
}

// fieldName nom exposé au client : tag json, sinon form
func fieldName(field reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return field.Name
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Le champ %s est requis", field)
	case "email":
		return "L'adresse email est invalide"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Le champ %s doit contenir au moins %s caractères", field, fe.Param())
		}
		return fmt.Sprintf("Le champ %s doit être au moins %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Le champ %s ne doit pas dépasser %s caractères", field, fe.Param())
		}
		return fmt.Sprintf("Le champ %s ne peut pas dépasser %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("Le champ %s doit être supérieur ou égal à %s", field, fe.Param())
	case "uuid", "uuid4":
		return fmt.Sprintf("Le champ %s doit être un identifiant valide", field)
	case "eqfield":
		return "La confirmation ne correspond pas"
	case "telephone":
		return "Le numéro de téléphone doit contenir 10 chiffres"
	case "groupe_sanguin":
		return "Le groupe sanguin doit être: A+, A-, B+, B-, AB+, AB-, O+ ou O-"
	case "chambre_type":
		return "Le type doit être: standard, vip, soins_intensifs ou urgence"
	case "lit_statut":
		return "Le statut doit être: disponible, occupe, maintenance ou reserve"
	case "rdv_statut":
		return "Le statut doit être: En attente, Confirmé, Annulé ou Terminé"
	case "facture_statut":
		return "Le statut doit être: en_attente, payee ou annulee"
	case "date":
		return fmt.Sprintf("Le champ %s doit être une date au format AAAA-MM-JJ", field)
	case "oneof":
		return fmt.Sprintf("Le champ %s doit être l'une des valeurs: %s", field, fe.Param())
	default:
		return fmt.Sprintf("Le champ %s est invalide", field)
	}
}
