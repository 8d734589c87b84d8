// Package directions は出発地点からゴルフ場までの車での所要時間を求めます。
package directions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"googlemaps.github.io/maps"
)

// DirectionsAPI はGoogle Maps Directions APIの呼び出しを抽象化します
type DirectionsAPI interface {
	Directions(ctx context.Context, r *maps.DirectionsRequest) ([]maps.Route, []maps.GeocodedWaypoint, error)
}

// ルートが存在しないことを示すステータス
// 東京の離島などは車でのルートがないため ZERO_RESULTS となる
var noRouteStatuses = []string{"ZERO_RESULTS", "NOT_FOUND"}

// Resolver は出発地点とゴルフ場の組み合わせから所要時間（分）を求めます
type Resolver struct {
	client  DirectionsAPI
	region  string
	timeout time.Duration
}

// NewResolver は新しいResolverを作成します
func NewResolver(client DirectionsAPI, region string, timeout time.Duration) *Resolver {
	return &Resolver{
		client:  client,
		region:  region,
		timeout: timeout,
	}
}

// NewMapsClient はGoogle Mapsのクライアントを作成します
func NewMapsClient(apiKey string, opts ...maps.ClientOption) (*maps.Client, error) {
	opts = append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)
	return maps.NewClient(opts...)
}

// Resolve は出発地点から目的地までの車での所要時間を分単位（切り捨て）で返します
// ルートが存在しない場合は reachable=false を返し、エラーにはしません
func (r *Resolver) Resolve(ctx context.Context, departure, destination string) (minutes int, reachable bool, err error) {
	ctx, seg := xray.BeginSubsegment(ctx, "Resolver.Resolve")
	defer seg.Close(nil)

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	routes, _, err := r.client.Directions(ctx, &maps.DirectionsRequest{
		Origin:      departure,
		Destination: destination,
		Mode:        maps.TravelModeDriving,
		Region:      r.region,
	})
	if err != nil {
		if isNoRoute(err) {
			return 0, false, nil
		}
		seg.Close(err)
		return 0, false, fmt.Errorf("failed to get directions from %s to %s: %w", departure, destination, err)
	}

	if len(routes) == 0 || len(routes[0].Legs) == 0 || routes[0].Legs[0] == nil {
		return 0, false, nil
	}

	return int(routes[0].Legs[0].Duration / time.Minute), true, nil
}

func isNoRoute(err error) bool {
	msg := err.Error()
	for _, status := range noRouteStatuses {
		if strings.Contains(msg, status) {
			return true
		}
	}
	return false
}
