// Package realtime multiplexes many logical change-event subscriptions
// over a small fixed set of physical channels to the change-stream
// transport.
//
// Every event category maps statically to one underlying table and one
// physical channel name (venue, brewery or user). The first subscriber for
// any category on a channel opens it and attaches listeners for every
// sibling category's table, so later subscribers never reopen the channel.
// When the last subscriber across all of a channel's categories is gone,
// the channel is closed. Need is recomputed from the live subscription set
// at the moment of each check rather than counted, so subscribes and
// unsubscribes tolerate arbitrary interleaving.
//
// Basic usage:
//
//	mux := realtime.NewMux(realtime.NewRedisTransport(client))
//	defer mux.Close()
//
//	sub, err := mux.Subscribe(ctx, realtime.CategoryHappyHourUpdated,
//	    func(e realtime.ChangeEvent) {
//	        // react to the change
//	    },
//	    realtime.FilterVenue(venueID),
//	)
//	if err != nil {
//	    return err
//	}
//	defer sub.Close()
//
// Dispatch is synchronous fan-out with no ordering guarantee between
// subscribers; a panicking callback is isolated and logged. Delivery is
// best effort: there is no retry queue and no replay.
package realtime
