package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/inventory/internal/console"
)

const (
	menuHeader  = "\n INVENTORY MANAGEMENT SYSTEM \n-----------------------------"
	menuItems   = " 1 --> Add new product \n 2 --> Update product attributes \n 3 --> Add new supplier \n 4 --> Place an order \n 5 --> View inventory \n 6 --> Generate reports \n 7 --> Exit \n"
	menuPrompt  = "Please select a function by entering its number: "
	pausePrompt = "\nPress ENTER to return to main menu..."
	exitChoice  = "7"
)

type action struct {
	title string
	run   func(ctx context.Context) error
}

type menu struct {
	session *console.Session
	deps    *Dependencies
	cfg     Config
	logger  *log.Entry
	actions map[string]action
}

func newMenu(session *console.Session, deps *Dependencies, cfg Config, logger *log.Entry) *menu {
	m := &menu{
		session: session,
		deps:    deps,
		cfg:     cfg,
		logger:  logger,
	}
	m.actions = map[string]action{
		"1": {title: " ADD NEW PRODUCT \n-----------------", run: m.addProduct},
		"2": {title: " UPDATE PRODUCT ATTRIBUTES \n---------------------------", run: m.updateProduct},
		"3": {title: " ADD NEW SUPPLIER \n------------------", run: m.addSupplier},
		"4": {title: " PLACE AN ORDER \n----------------", run: m.placeOrder},
		"5": {title: " VIEW INVENTORY \n----------------", run: m.viewInventory},
		"6": {title: " GENERATE REPORTS \n------------------", run: m.generateReports},
	}
	return m
}

// loop показывает меню до выбора Exit или окончания ввода.
func (m *menu) loop(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		m.session.Println(menuHeader)
		m.session.Printf("%s\n", menuItems)
		choice, err := m.session.Ask(menuPrompt)
		if err != nil {
			return m.terminate(err)
		}
		m.session.Println()

		choice = strings.TrimSpace(choice)
		if choice == exitChoice {
			return m.terminate(nil)
		}
		selected, ok := m.actions[choice]
		if !ok {
			m.session.Println("\nInvalid option. Please try again. ")
			continue
		}

		m.session.Println(selected.title)
		if err := selected.run(ctx); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				return m.terminate(err)
			}
			m.fail(err)
		}

		if err := m.session.Pause(pausePrompt); err != nil {
			return m.terminate(err)
		}
	}
}

// terminate завершает цикл. Конец ввода: штатный выход.
func (m *menu) terminate(err error) error {
	if err != nil && !errors.Is(err, io.EOF) {
		if !errors.Is(err, context.Canceled) {
			m.logger.WithError(err).Error("console input failed")
		}
		return err
	}
	m.session.Println("Program terminated.")
	return nil
}

// fail сообщает о сбое операции; программа продолжает работу.
func (m *menu) fail(err error) {
	m.logger.WithError(err).Error("operation failed")
	m.session.Println(fmt.Sprintf("ERROR: %v", err))
}
