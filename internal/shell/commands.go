package shell

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/atinyakov/PassKeeper/internal/apperr"
)

func (s *Shell) register(ctx context.Context) {
	name, err := s.ask("Username: ")
	if err != nil {
		return
	}
	password, err := s.askSecret("Password: ")
	if err != nil {
		return
	}
	if _, err := s.auth.Register(ctx, name, password); err != nil {
		s.report("register", err)
		return
	}
	s.success("User created, you can now log in")
}

func (s *Shell) login(ctx context.Context) {
	name, err := s.ask("Username: ")
	if err != nil {
		return
	}
	password, err := s.askSecret("Password: ")
	if err != nil {
		return
	}
	sess, ok, err := s.auth.Authenticate(ctx, name, password)
	if err != nil {
		s.report("login", err)
		return
	}
	if !ok {
		s.fail("Incorrect username or password")
		return
	}
	s.session = &sess
	s.success(fmt.Sprintf("Welcome, %s", sess.UserName))
}

func (s *Shell) whoami(ctx context.Context) {
	if !s.requireSession() {
		return
	}
	name, ok, err := s.store.GetUsername(ctx, s.session.UserID)
	if err != nil {
		s.report("whoami", err)
		return
	}
	if !ok {
		s.session = nil
		s.fail("Account no longer exists")
		return
	}
	fmt.Fprintln(s.out, name)
}

func (s *Shell) add(ctx context.Context) {
	if !s.requireSession() {
		return
	}
	itemName, err := s.ask("Item name: ")
	if err != nil {
		return
	}
	if itemName == "" {
		s.fail("Item name is required")
		return
	}
	login, err := s.ask("Login: ")
	if err != nil {
		return
	}
	password, err := s.askSecret("Password: ")
	if err != nil {
		return
	}
	if _, err := s.store.AddItem(ctx, s.session.UserID, itemName, login, password); err != nil {
		s.report("add", err)
		return
	}
	s.success("Item saved")
}

func (s *Shell) list(ctx context.Context) {
	if !s.requireSession() {
		return
	}
	names, err := s.store.GetAllItemNames(ctx, s.session.UserID)
	if err != nil {
		s.report("list", err)
		return
	}
	if len(names) == 0 {
		fmt.Fprintln(s.out, "No items stored")
		return
	}
	fmt.Fprintln(s.out, "Stored items:")
	for _, n := range names {
		fmt.Fprintf(s.out, "  %s\n", n)
	}
}

func (s *Shell) show(ctx context.Context, name string) {
	if !s.requireSession() {
		return
	}
	if name == "" {
		fmt.Fprintln(s.out, "Usage: show <name>")
		return
	}
	id, err := s.resolveItem(ctx, name)
	if err != nil {
		s.report("show", err)
		return
	}
	d, err := s.store.GetItemDetails(ctx, id)
	if err != nil {
		s.report("show", err)
		return
	}
	fmt.Fprintf(s.out, "Name: %s\nLogin: %s\nPassword: %s\n", d.ItemName, d.Username, d.Password)
}

func (s *Shell) deleteItem(ctx context.Context, name string) {
	if !s.requireSession() {
		return
	}
	if name == "" {
		fmt.Fprintln(s.out, "Usage: delete <name>")
		return
	}
	id, err := s.resolveItem(ctx, name)
	if err != nil {
		s.report("delete", err)
		return
	}
	if err := s.store.DeleteItem(ctx, id); err != nil {
		s.report("delete", err)
		return
	}
	s.success("Item deleted")
}

func (s *Shell) deleteAccount(ctx context.Context) {
	if !s.requireSession() {
		return
	}
	answer, err := s.ask("Delete this account and all its items? Type 'yes' to confirm: ")
	if err != nil {
		return
	}
	if answer != "yes" {
		fmt.Fprintln(s.out, "Cancelled")
		return
	}
	if err := s.auth.DeleteAccount(ctx, *s.session); err != nil {
		s.report("delete-account", err)
		return
	}
	s.session = nil
	s.success("Account deleted")
}

// resolveItem finds the id of the current user's item called name. The
// store's name lookup is global, so its answer is only used when the item
// belongs to the current user.
func (s *Shell) resolveItem(ctx context.Context, name string) (int64, error) {
	items, err := s.store.GetAllItems(ctx, s.session.UserID)
	if err != nil {
		return 0, err
	}

	id, ok, err := s.store.GetItemID(ctx, name)
	if err != nil {
		return 0, err
	}
	if ok {
		for _, it := range items {
			if it.ID == id {
				return id, nil
			}
		}
		s.log.Debug("item name resolved to another user's item", zap.String("session", s.session.ID))
	}

	for _, it := range items {
		if it.ItemName == name {
			return it.ID, nil
		}
	}
	return 0, fmt.Errorf("item %q: %w", name, apperr.ErrNotFound)
}
