package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/pictora/pictora/internal/feed"
	"github.com/pictora/pictora/internal/profile"
)

const feedWaitTimeout = 45 * time.Second

var loginCmd = &cobra.Command{
	Use:   "login [redirect-url-or-code]",
	Short: "Authenticate against the photo API",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(func(s services) error {
			pterm.Info.Println("Open this URL in your browser and approve access:")
			pterm.Println(s.Helper.AuthCodeURL())

			var input string
			if len(args) > 0 {
				input = args[0]
			} else {
				var err error
				input, err = pterm.DefaultInteractiveTextInput.Show("Paste the redirect URL (or the code)")
				if err != nil {
					return err
				}
			}

			// Accept either the full redirect URL or a bare code.
			code, ok := s.Helper.Code(input)
			if !ok {
				code = strings.TrimSpace(input)
			}

			done := make(chan error, 1)
			s.Auth.Exchange(code, func(tokenValue string, err error) {
				if err == nil {
					s.Tokens.Save(tokenValue)
				}
				done <- err
			})
			if err := <-done; err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			pterm.Success.Println("Logged in")
			return nil
		})
	},
}

var feedPages int

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show the photo feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(func(s services) error {
			for page := 0; page < feedPages; page++ {
				if err := fetchPage(s.Feed); err != nil {
					pterm.Warning.Println(err)
					break
				}
			}

			photos := s.Feed.Photos()
			if len(photos) == 0 {
				pterm.Warning.Println("No photos loaded. Are you logged in?")
				return nil
			}

			rows := pterm.TableData{{"ID", "Size", "Liked", "Created", "Description"}}
			for _, p := range photos {
				liked := ""
				if p.Liked {
					liked = "yes"
				}
				created := ""
				if !p.CreatedAt.IsZero() {
					created = p.CreatedAt.Format("2006-01-02")
				}
				rows = append(rows, []string{
					p.ID,
					fmt.Sprintf("%dx%d", p.Width, p.Height),
					liked,
					created,
					truncate(p.Description, 40),
				})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
		})
	},
}

var likeRemove bool

var likeCmd = &cobra.Command{
	Use:   "like <photo-id>",
	Short: "Like or unlike a photo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(func(s services) error {
			done := make(chan error, 1)
			s.Feed.ChangeLike(args[0], !likeRemove, func(err error) {
				done <- err
			})
			if err := <-done; err != nil {
				return fmt.Errorf("like change failed: %w", err)
			}

			if likeRemove {
				pterm.Success.Printfln("Unliked %s", args[0])
			} else {
				pterm.Success.Printfln("Liked %s", args[0])
			}
			return nil
		})
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the authenticated user's profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(func(s services) error {
			done := make(chan error, 1)
			var prof profile.Profile
			s.Profile.FetchProfile(func(p profile.Profile, err error) {
				prof = p
				done <- err
			})
			if err := <-done; err != nil {
				return fmt.Errorf("profile fetch failed: %w", err)
			}

			pterm.DefaultSection.Println(prof.FullName())
			pterm.Println(prof.LoginName())
			if prof.Bio != "" {
				pterm.Println(prof.Bio)
			}

			avatarDone := make(chan error, 1)
			var avatarURL string
			s.Avatar.FetchAvatarURL(prof.Username, func(u string, err error) {
				avatarURL = u
				avatarDone <- err
			})
			if err := <-avatarDone; err == nil {
				pterm.Printfln("Avatar: %s", avatarURL)
			}
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(func(s services) error {
			s.Sessions.Logout()
			pterm.Success.Println("Logged out")
			return nil
		})
	},
}

func init() {
	feedCmd.Flags().IntVar(&feedPages, "pages", 1, "Number of feed pages to load")
	likeCmd.Flags().BoolVar(&likeRemove, "remove", false, "Remove the like instead of adding it")
}

// fetchPage triggers one page load and waits for the resulting change
// notification. A failed page produces no notification, which surfaces
// here as a timeout.
func fetchPage(svc *feed.Service) error {
	done := make(chan struct{}, 1)
	sub := svc.Subscribe(func([]feed.Photo) {
		select {
		case done <- struct{}{}:
		default:
		}
	})
	defer sub.Cancel()

	svc.FetchNextPage()

	select {
	case <-done:
		return nil
	case <-time.After(feedWaitTimeout):
		return errors.New("timed out waiting for the feed to update")
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
