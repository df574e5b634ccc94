package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/linemk/printshop/internal/domain/models"
	"github.com/linemk/printshop/internal/poller"
	"github.com/linemk/printshop/internal/workshop"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestLocation(t *testing.T) {
	root := &cobra.Command{Use: "printshop"}
	order := &cobra.Command{Use: "order"}
	watch := &cobra.Command{Use: "watch <id>"}
	root.AddCommand(order)
	order.AddCommand(watch)

	assert.Equal(t, "/order/watch", location(watch))
}

func TestCLINavigator(t *testing.T) {
	var out bytes.Buffer
	nav := &cliNavigator{out: &out, location: "/cart/show"}

	nav.Navigate("/login?redirectTo=" + "%2Fcart%2Fshow")
	assert.Contains(t, out.String(), "printshop login")
	assert.Contains(t, out.String(), "printshop cart show")
}

func TestPromptConfirmer(t *testing.T) {
	job := models.PrintJob{ID: 7, Status: models.JobPrinting}

	var out bytes.Buffer
	yes := promptConfirmer{in: strings.NewReader("y\n"), out: &out}
	assert.True(t, yes.Confirm(context.Background(), job, workshop.Cancel))
	assert.Contains(t, out.String(), "cancel job #7")

	no := promptConfirmer{in: strings.NewReader("\n"), out: &out}
	assert.False(t, no.Confirm(context.Background(), job, workshop.Cancel))
}

func TestProgress(t *testing.T) {
	assert.Equal(t, "50%", progress(0.5))
	assert.Equal(t, "73%", progress(73))
}

func TestStatusError(t *testing.T) {
	assert.EqualError(t, statusError(poller.State{Err: "could not load order status"}), "could not load order status")
	// старые данные есть - показываем их вместе с сообщением
	assert.NoError(t, statusError(poller.State{Err: "could not load order status", View: &poller.View{}}))
	assert.NoError(t, statusError(poller.State{View: &poller.View{}}))
}

func TestReadPassword_Piped(t *testing.T) {
	pw, err := readPassword(strings.NewReader("s3cret \n"))
	assert.NoError(t, err)
	assert.Equal(t, "s3cret", pw)

	pw, err = readPassword(strings.NewReader("no-newline"))
	assert.NoError(t, err)
	assert.Equal(t, "no-newline", pw)

	_, err = readPassword(strings.NewReader(""))
	assert.Error(t, err)
}
