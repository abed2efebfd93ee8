/*
 * Davplayer is a music player for WebDAV directories.
 * Copyright (C) 2020 Tero Vierimaa
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"tryffel.net/go/davplayer/catalog"
	"tryffel.net/go/davplayer/config"
	"tryffel.net/go/davplayer/models"
)

var lsFlags = struct {
	sort     string
	desc     bool
	filter   string
	page     int
	pageSize int
}{}

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List tracks",
	Long: `List tracks in WebDAV directory without playing them.
Index column is the index that http api accepts for playing the track with same sort and filter.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		initConfig()
		logrus.SetLevel(logrus.WarnLevel)

		order, err := lsOrder(config.AppConfig.Player.DefaultSort(), lsFlags.sort, lsFlags.desc,
			cmd.Flags().Changed("desc"))
		if err != nil {
			return err
		}
		pageSize := lsFlags.pageSize
		if pageSize <= 0 {
			pageSize = config.AppConfig.Player.PageSize
		}
		if lsFlags.page < 1 {
			return fmt.Errorf("page must be at least 1")
		}

		dav, err := newRemote()
		if err != nil {
			return err
		}
		store := catalog.NewStore(dav, order)
		store.SetFilter(lsFlags.filter)
		if err := refreshCatalog(store); err != nil {
			return err
		}
		return printPage(store, lsFlags.page-1, pageSize)
	},
}

// lsOrder overrides configured sort with flags. Direction flag applies to configured key if
// key is not given.
func lsOrder(base models.Sort, key string, desc, descSet bool) (models.Sort, error) {
	direction := models.SortAsc
	if desc {
		direction = models.SortDesc
	}
	if key != "" {
		return models.ParseSort(key, string(direction))
	}
	if descSet {
		base.Direction = direction
	}
	return base, nil
}

func printPage(store *catalog.Store, page, pageSize int) error {
	paging := models.Paging{Page: page, PageSize: pageSize}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "INDEX\tNAME\tMODIFIED\tSIZE")
	for i, v := range store.ViewAt(paging.Page, paging.PageSize) {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", paging.Offset()+i, v.Name, v.LastModifiedString(), v.Size)
	}
	fmt.Fprintf(w, "\npage %d / %d, %d tracks\n", paging.Page+1, paging.TotalPages(store.Len()), store.Len())
	return w.Flush()
}

func init() {
	lsCmd.Flags().StringVarP(&lsFlags.sort, "sort", "s", "", "sort by 'name' or 'date'")
	lsCmd.Flags().BoolVarP(&lsFlags.desc, "desc", "d", false, "sort descending")
	lsCmd.Flags().StringVarP(&lsFlags.filter, "filter", "f", "", "show only tracks whose name contains text")
	lsCmd.Flags().IntVarP(&lsFlags.page, "page", "p", 1, "page to show, starting from 1")
	lsCmd.Flags().IntVar(&lsFlags.pageSize, "page-size", 0, "tracks per page")
	rootCmd.AddCommand(lsCmd)
}
