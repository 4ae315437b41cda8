package cli

import (
	"github.com/AlecAivazis/survey/v2"

	"github.com/dyike/MoneyScope/internal/models"
)

// PromptForPair asks for the base currency, then for a target from the
// remaining currencies.
func PromptForPair() (models.CurrencyPair, error) {
	var base string
	err := survey.AskOne(&survey.Select{
		Message:  "Select the base currency:",
		Options:  models.Currencies,
		Default:  models.DefaultPair.Base,
		PageSize: 8,
	}, &base)
	if err != nil {
		return models.CurrencyPair{}, err
	}

	targets := targetOptions(base)
	var target string
	err = survey.AskOne(&survey.Select{
		Message:  "Select the target currency:",
		Options:  targets,
		Default:  defaultTarget(base, targets),
		PageSize: 8,
	}, &target)
	if err != nil {
		return models.CurrencyPair{}, err
	}
	return models.NewPair(base, target)
}

// targetOptions is the currency list without base.
func targetOptions(base string) []string {
	out := make([]string, 0, len(models.Currencies)-1)
	for _, c := range models.Currencies {
		if c != base {
			out = append(out, c)
		}
	}
	return out
}

func defaultTarget(base string, targets []string) string {
	if base != models.DefaultPair.Target {
		return models.DefaultPair.Target
	}
	return targets[0]
}

// PromptConfirm asks a yes/no question.
func PromptConfirm(message string, def bool) (bool, error) {
	ok := def
	err := survey.AskOne(&survey.Confirm{Message: message, Default: def}, &ok)
	return ok, err
}
