package usecase

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/hotfixer/pkg/domain/model"
	"github.com/m-mizutani/hotfixer/pkg/domain/types"
)

// ExtractContext validates the trigger event. It never talks to GitHub, so a
// rejected event costs no API calls.
func ExtractContext(event *model.TriggerEvent) error {
	if event == nil {
		return goerr.Wrap(types.ErrUnsupportedEvent, "trigger event is empty")
	}
	return event.Validate()
}
