package command

import "github.com/ayaseru/shiori/internal/bus"

// Register binds every command handler to its name on the bus.  It is
// called once at startup; a duplicate registration is a programming error
// and propagates.
func Register(b *bus.CommandBus, shows *ShowHandlers, music *MusicHandlers, imports *ImportHandlers) error {
	bindings := []struct {
		name string
		h    bus.HandlerFunc
	}{
		{AddShow{}.CommandName(), shows.HandleAdd},
		{UpdateShow{}.CommandName(), shows.HandleUpdate},
		{SetShowStatus{}.CommandName(), shows.HandleSetStatus},
		{RecordWatched{}.CommandName(), shows.HandleRecordWatched},
		{DeleteShow{}.CommandName(), shows.HandleDelete},
		{AddAlias{}.CommandName(), shows.HandleAddAlias},
		{DeleteAlias{}.CommandName(), shows.HandleDeleteAlias},
		{SetOverride{}.CommandName(), shows.HandleSetOverride},
		{DeleteOverride{}.CommandName(), shows.HandleDeleteOverride},
		{AddSong{}.CommandName(), music.HandleAddSong},
		{UpdateSong{}.CommandName(), music.HandleUpdateSong},
		{SetFavorite{}.CommandName(), music.HandleSetFavorite},
		{DeleteSong{}.CommandName(), music.HandleDeleteSong},
		{RenamePlaylist{}.CommandName(), music.HandleRenamePlaylist},
		{DeletePlaylist{}.CommandName(), music.HandleDeletePlaylist},
		{ImportPlaylist{}.CommandName(), music.HandleImportPlaylist},
		{ImportMALList{}.CommandName(), imports.HandleImportMAL},
	}
	for _, b2 := range bindings {
		if err := b.Register(b2.name, b2.h); err != nil {
			return err
		}
	}
	return nil
}
