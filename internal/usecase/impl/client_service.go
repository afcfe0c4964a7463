package impl

import (
	"context"
	"strings"

	"tracker/internal/domain/entity"
	"tracker/internal/domain/repository"
	"tracker/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

type clientService struct {
	ownedCrud[entity.Client]
}

// ClientServiceParams holds dependencies for ClientService, injected by Fx.
type ClientServiceParams struct {
	fx.In

	ClientRepo repository.ClientRepository
}

// NewClientService is the constructor for clientService.
func NewClientService(params ClientServiceParams) usecase.ClientUsecase {
	return &clientService{ownedCrud: ownedCrud[entity.Client]{subject: "client", repo: params.ClientRepo}}
}

func (srv *clientService) Create(ctx context.Context, caller entity.Caller, input *usecase.ClientInput) (*entity.Client, error) {
	name, err := requiredName(input.Name, "name")
	if err != nil {
		return nil, err
	}

	client := &entity.Client{Name: name, Currency: entity.DefaultCurrency}
	applyClientFields(client, input)

	return srv.create(ctx, caller, client)
}

func (srv *clientService) Update(ctx context.Context, caller entity.Caller, id uuid.UUID, input *usecase.ClientInput) (*entity.Client, error) {
	return srv.update(ctx, caller, id, func(client *entity.Client) error {
		name, err := updatedName(client.Name, input.Name, "name")
		if err != nil {
			return err
		}
		client.Name = name
		applyClientFields(client, input)

		return nil
	})
}

func applyClientFields(client *entity.Client, input *usecase.ClientInput) {
	setIfPresent(&client.Email, input.Email)
	setIfPresent(&client.Address, input.Address)
	setIfPresent(&client.Note, input.Note)
	if input.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*input.Currency))
		if currency == "" {
			currency = entity.DefaultCurrency
		}
		client.Currency = currency
	}
}
