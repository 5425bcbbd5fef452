package remote

import (
	"context"

	"github.com/Domenick1991/skybooking/config"
	"github.com/Domenick1991/skybooking/internal/rpc"
)

type UsersClient struct {
	connectors ConnectorSource
}

func NewUsersClient(connectors ConnectorSource) *UsersClient {
	return &UsersClient{connectors: connectors}
}

// CustomerExists treats a 404 from the users service as "does not exist".
func (c *UsersClient) CustomerExists(ctx context.Context, id string) (bool, error) {
	conn, err := c.connectors.Connector(config.ServiceUsers)
	if err != nil {
		return false, err
	}
	resp, err := rpc.Call[existsResponse](ctx, conn, UserExistsRequest{ID: id})
	if err != nil {
		if rpc.KindOf(err) == rpc.KindNotFound {
			return false, nil
		}
		return false, err
	}
	return resp.Exists, nil
}
