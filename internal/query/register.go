package query

import "github.com/ayaseru/shiori/internal/bus"

// Register binds every query handler to its name on the bus.
func Register(b *bus.QueryBus, shows *ShowQueries, music *MusicQueries) error {
	bindings := []struct {
		name string
		h    bus.HandlerFunc
	}{
		{GetShow{}.QueryName(), shows.HandleGet},
		{ListShows{}.QueryName(), shows.HandleList},
		{SearchShows{}.QueryName(), shows.HandleSearch},
		{WeekSchedule{}.QueryName(), shows.HandleWeek},
		{ListSongs{}.QueryName(), music.HandleListSongs},
		{SearchSongs{}.QueryName(), music.HandleSearchSongs},
		{ListPlaylists{}.QueryName(), music.HandleListPlaylists},
		{GetPlaylist{}.QueryName(), music.HandleGetPlaylist},
	}
	for _, b2 := range bindings {
		if err := b.Register(b2.name, b2.h); err != nil {
			return err
		}
	}
	return nil
}
