package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/willemschots/tuffyestates/internal/auth"
	"github.com/willemschots/tuffyestates/internal/email"
	"github.com/willemschots/tuffyestates/internal/errorz"
	"github.com/willemschots/tuffyestates/internal/offer"
	"github.com/willemschots/tuffyestates/internal/property"
)

// credentialsIn is the body of the register and login routes. The password
// stays a plain string until it is parsed, so validation sees it.
type credentialsIn struct {
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

func (in credentialsIn) credentials() (auth.Credentials, error) {
	var invalid errorz.InvalidInput

	addr, err := email.ParseAddress(in.Email)
	if err != nil {
		invalid = append(invalid, errorz.Keyed{Key: "email", Err: err})
	}

	pwd, err := auth.ParsePassword(in.Password)
	if err != nil {
		invalid = append(invalid, errorz.Keyed{Key: "password", Err: err})
	}

	if len(invalid) > 0 {
		return auth.Credentials{}, invalid
	}

	return auth.Credentials{Email: addr, Password: pwd}, nil
}

type tokenOut struct {
	Token string `json:"token"`
}

type sessionOut struct {
	Token string `json:"token"`
	ID    string `json:"id"`
}

type statusOut struct {
	Email string `json:"email"`
	ID    string `json:"id"`
}

type createdOut struct {
	ID string `json:"id"`
}

func (s *Server) registerHandler() http.Handler {
	h := mapBoth(s, func(ctx context.Context, in credentialsIn) (auth.Token, error) {
		c, err := in.credentials()
		if err != nil {
			return auth.Token{}, err
		}

		return s.deps.AuthService.Register(ctx, c)
	})

	return h.response(func(r result[credentialsIn, auth.Token]) error {
		r.s.setTokenCookies(r.w, r.out)
		writeJSON(r.w, r.r, routeStatus(r.r), tokenOut{Token: r.out.Value})
		return nil
	})
}

func (s *Server) loginHandler() http.Handler {
	h := mapBoth(s, func(ctx context.Context, in credentialsIn) (auth.Session, error) {
		c, err := in.credentials()
		if err != nil {
			return auth.Session{}, err
		}

		return s.deps.AuthService.Login(ctx, c)
	})

	return h.response(func(r result[credentialsIn, auth.Session]) error {
		r.s.setTokenCookies(r.w, r.out.Token)
		writeJSON(r.w, r.r, routeStatus(r.r), sessionOut{Token: r.out.Token.Value, ID: r.out.UserID})
		return nil
	})
}

func (s *Server) statusHandler() http.Handler {
	return mapResponse(s, func(ctx context.Context) (statusOut, error) {
		id, err := callerID(ctx)
		if err != nil {
			return statusOut{}, err
		}

		u, err := s.deps.AuthService.User(ctx, id)
		if err != nil {
			return statusOut{}, err
		}

		return statusOut{Email: string(u.Email), ID: u.ID}, nil
	})
}

type specificationIn struct {
	Built     *int     `json:"built,omitempty"`
	Lot       *float64 `json:"lot,omitempty"`
	Bedrooms  *int     `json:"bedrooms,omitempty"`
	Bathrooms *int     `json:"bathrooms,omitempty"`
	Size      *int     `json:"size,omitempty"`
}

func (in *specificationIn) patch() property.SpecificationPatch {
	if in == nil {
		return property.SpecificationPatch{}
	}

	return property.SpecificationPatch{
		Built:     in.Built,
		Lot:       in.Lot,
		Bedrooms:  in.Bedrooms,
		Bathrooms: in.Bathrooms,
		Size:      in.Size,
	}
}

// specification is only called on validated input, every field is set.
func (in *specificationIn) specification() property.Specification {
	if in == nil {
		return property.Specification{}
	}

	return property.Specification{
		Built:     deref(in.Built),
		Lot:       deref(in.Lot),
		Bedrooms:  deref(in.Bedrooms),
		Bathrooms: deref(in.Bathrooms),
		Size:      deref(in.Size),
	}
}

type createPropertyIn struct {
	Address       string           `json:"address,omitempty"`
	Price         *int             `json:"price,omitempty"`
	Description   *string          `json:"description,omitempty"`
	Specification *specificationIn `json:"specification,omitempty"`
	Image         []byte           `json:"image,omitempty"`
}

func (in *createPropertyIn) receiveFile(name string, data []byte) {
	if name == "image" {
		in.Image = data
	}
}

func (s *Server) createPropertyHandler() http.Handler {
	return mapBoth(s, func(ctx context.Context, in createPropertyIn) (createdOut, error) {
		owner, err := callerID(ctx)
		if err != nil {
			return createdOut{}, err
		}

		id, err := s.deps.PropertyService.Create(ctx, property.Draft{
			Owner:         owner,
			Address:       in.Address,
			Price:         deref(in.Price),
			Description:   deref(in.Description),
			Specification: in.Specification.specification(),
			Image:         in.Image,
		})
		if err != nil {
			return createdOut{}, err
		}

		return createdOut{ID: id}, nil
	})
}

type idIn struct {
	ID string `json:"id,omitempty"`
}

func (s *Server) getPropertyHandler() http.Handler {
	return mapBoth(s, func(ctx context.Context, in idIn) (propertyOut, error) {
		p, err := s.deps.PropertyService.Get(ctx, in.ID)
		if err != nil {
			return propertyOut{}, err
		}

		return toPropertyOut(p), nil
	})
}

type updatePropertyIn struct {
	ID            string           `json:"id,omitempty"`
	Price         *int             `json:"price,omitempty"`
	Description   *string          `json:"description,omitempty"`
	Specification *specificationIn `json:"specification,omitempty"`
}

func (s *Server) updatePropertyHandler() http.Handler {
	return mapRequest(s, func(ctx context.Context, in updatePropertyIn) error {
		owner, err := callerID(ctx)
		if err != nil {
			return err
		}

		return s.deps.PropertyService.Update(ctx, property.Patch{
			ID:            in.ID,
			Owner:         owner,
			Price:         in.Price,
			Description:   in.Description,
			Specification: in.Specification.patch(),
		})
	})
}

func (s *Server) deletePropertyHandler() http.Handler {
	return mapRequest(s, func(ctx context.Context, in idIn) error {
		owner, err := callerID(ctx)
		if err != nil {
			return err
		}

		return s.deps.PropertyService.Delete(ctx, in.ID, owner)
	})
}

type propertiesQueryIn struct {
	Offset       int      `json:"offset,omitempty"`
	Limit        int      `json:"limit,omitempty"`
	PriceMin     *int     `json:"price-min,omitempty"`
	PriceMax     *int     `json:"price-max,omitempty"`
	LotMin       *float64 `json:"lot-min,omitempty"`
	LotMax       *float64 `json:"lot-max,omitempty"`
	SizeMin      *int     `json:"size-min,omitempty"`
	SizeMax      *int     `json:"size-max,omitempty"`
	MinBedrooms  *int     `json:"min-bedrooms,omitempty"`
	MinBathrooms *int     `json:"min-bathrooms,omitempty"`
}

func (s *Server) listPropertiesHandler() http.Handler {
	return mapBoth(s, func(ctx context.Context, in propertiesQueryIn) ([]propertyOut, error) {
		props, err := s.deps.PropertyService.List(ctx, property.Query{
			Offset:       in.Offset,
			Limit:        in.Limit,
			PriceMin:     in.PriceMin,
			PriceMax:     in.PriceMax,
			LotMin:       in.LotMin,
			LotMax:       in.LotMax,
			SizeMin:      in.SizeMin,
			SizeMax:      in.SizeMax,
			MinBedrooms:  in.MinBedrooms,
			MinBathrooms: in.MinBathrooms,
		})
		if err != nil {
			return nil, err
		}

		return toPropertiesOut(props), nil
	})
}

type listingsQueryIn struct {
	UserID string `json:"userId,omitempty"`
	Offset int    `json:"offset,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

func (s *Server) listingsHandler() http.Handler {
	return mapBoth(s, func(ctx context.Context, in listingsQueryIn) ([]propertyOut, error) {
		owner := in.UserID
		if owner == "" {
			id, err := callerID(ctx)
			if err != nil {
				return nil, err
			}
			owner = id
		}

		props, err := s.deps.PropertyService.ListByOwner(ctx, owner, in.Offset, in.Limit)
		if err != nil {
			return nil, err
		}

		return toPropertiesOut(props), nil
	})
}

type offerIn struct {
	Name      string `json:"name,omitempty"`
	Phone     string `json:"phone,omitempty"`
	HomeOffer string `json:"homeOffer,omitempty"`
	CashOffer *int   `json:"cashOffer,omitempty"`
	Comments  string `json:"comments,omitempty"`
}

func (s *Server) offerHandler() http.Handler {
	return mapRequest(s, func(ctx context.Context, in offerIn) error {
		var sender *auth.User
		if claims, ok := ClaimsFromContext(ctx); ok {
			// A token can outlive its user, the offer is then sent anonymously.
			u, err := s.deps.AuthService.User(ctx, claims.UserID)
			switch {
			case err == nil:
				sender = &u
			case !errors.Is(err, errorz.ErrNotFound):
				return err
			}
		}

		return s.deps.OfferService.Submit(ctx, offer.Offer{
			Name:      in.Name,
			Phone:     in.Phone,
			HomeOffer: in.HomeOffer,
			CashOffer: deref(in.CashOffer),
			Comments:  in.Comments,
		}, sender)
	})
}

type specificationOut struct {
	Built     int     `json:"built"`
	Lot       float64 `json:"lot"`
	Bedrooms  int     `json:"bedrooms"`
	Bathrooms int     `json:"bathrooms"`
	Size      int     `json:"size"`
}

type locationOut struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

type propertyOut struct {
	ID            string           `json:"_id"`
	Owner         string           `json:"owner"`
	Address       string           `json:"address"`
	Price         int              `json:"price"`
	Description   string           `json:"description"`
	Location      locationOut      `json:"location"`
	Specification specificationOut `json:"specification"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

func toPropertyOut(p property.Property) propertyOut {
	return propertyOut{
		ID:            p.ID,
		Owner:         p.Owner,
		Address:       p.Address,
		Price:         p.Price,
		Description:   p.Description,
		Location:      locationOut(p.Location),
		Specification: specificationOut(p.Specification),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func toPropertiesOut(props []property.Property) []propertyOut {
	out := make([]propertyOut, 0, len(props))
	for _, p := range props {
		out = append(out, toPropertyOut(p))
	}
	return out
}

func deref[T any](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}
