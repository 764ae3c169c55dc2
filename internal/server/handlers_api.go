package server

import (
	goerrors "errors"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/streampulse/internal/domain"
	"github.com/pscheid92/streampulse/internal/errors"
)

// handleStream returns the persisted stream record (owner, live flag,
// settings) for dashboards that do not hold a socket open.
func (s *Server) handleStream(c echo.Context) error {
	streamID := c.Param("id")
	if streamID == "" {
		serr := errors.ValidationError("missing stream id")
		return c.JSON(serr.HTTPStatus(), serr.ToResponse())
	}

	stream, err := s.sessionDeps.Streams.GetByID(c.Request().Context(), streamID)
	if goerrors.Is(err, domain.ErrStreamNotFound) {
		serr := errors.NotFoundError("stream not found").WithContext("stream_id", streamID)
		return c.JSON(serr.HTTPStatus(), serr.ToResponse())
	}
	if err != nil {
		serr := errors.ExternalError("failed to load stream", err)
		return c.JSON(serr.HTTPStatus(), serr.ToResponse())
	}

	return c.JSON(200, map[string]any{
		"id":               stream.ID,
		"ownerId":          stream.OwnerID,
		"live":             stream.Live,
		"viewerCount":      stream.ViewerCount,
		"chatEnabled":      stream.ChatEnabled,
		"donationsEnabled": stream.DonationsEnabled,
	})
}

// handleRoomStats returns the live room snapshot for a stream. Unknown
// streams report an empty room rather than 404; rooms exist lazily.
func (s *Server) handleRoomStats(c echo.Context) error {
	streamID := c.Param("id")
	if streamID == "" {
		serr := errors.ValidationError("missing stream id")
		return c.JSON(serr.HTTPStatus(), serr.ToResponse())
	}

	snapshot := s.sessionDeps.Coordinator.Snapshot(streamID)
	counts := s.sessionDeps.Coordinator.Members(streamID)

	return c.JSON(200, map[string]any{
		"streamId":        streamID,
		"viewerCount":     snapshot.ViewerCount,
		"peakViewerCount": snapshot.PeakViewerCount,
		"hosts":           counts.Hosts,
		"publishers":      counts.Publishers,
		"pendingRequests": counts.Pending,
	})
}
