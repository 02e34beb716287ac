package tools

import (
	"time"

	"go.uber.org/zap"

	"github.com/lexcodex/hogar/assistant"
	"github.com/lexcodex/hogar/store"
)

// Tool names advertised to the completion service. The names are part of the
// prompt contract: the model ties user intent to these identifiers.
const (
	ToolPendingTasks   = "consultar_tareas_pendientes"
	ToolCompletedTasks = "consultar_tareas_completadas"
	ToolEvents         = "consultar_eventos"
	ToolUnreadMessages = "consultar_mensajes_no_leidos"
	ToolCreateTask     = "crear_tarea"
	ToolDailySummary   = "resumen_diario"
)

// Deps are the persistence collaborators the catalog dispatches against. Now
// defaults to time.Now; tests pin it for deterministic date math.
type Deps struct {
	Tasks  store.TaskStore
	Events store.EventStore
	Inbox  store.InboxStore
	Now    func() time.Time
}

// Catalog pairs the registry advertised to the model with the dispatcher that
// executes its invocations. Building both from one definition list keeps them
// in sync: a name registered here always has a handler and vice versa.
type Catalog struct {
	Registry   *assistant.ToolRegistry
	Dispatcher *Dispatcher
}

// NewCatalog wires the full household tool set.
func NewCatalog(deps Deps, logger *zap.Logger) (*Catalog, error) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	tasks := &taskTools{tasks: deps.Tasks, now: deps.Now}
	events := &eventTools{events: deps.Events, now: deps.Now}
	inbox := &inboxTools{inbox: deps.Inbox}

	handlers := map[string]Handler{
		ToolPendingTasks:   tasks.PendingTasks,
		ToolCompletedTasks: tasks.CompletedTasks,
		ToolEvents:         events.Events,
		ToolUnreadMessages: inbox.UnreadMessages,
		ToolCreateTask:     tasks.CreateTask,
	}
	dispatcher := NewDispatcher(handlers, logger)
	handlers[ToolDailySummary] = summaryHandler(dispatcher)

	registry, err := assistant.NewToolRegistry(
		assistant.ToolDefinition{
			Name:        ToolPendingTasks,
			Description: "Lista las tareas pendientes del miembro con los días restantes hasta su vencimiento.",
			Parameters: []assistant.ToolParameter{
				{Name: "id_miembro", Type: "integer", Description: "Consultar las tareas de otro miembro del hogar."},
				{Name: "ordenar_por_vencimiento", Type: "boolean", Description: "Ordenar por fecha límite más cercana.", Default: true},
			},
		},
		assistant.ToolDefinition{
			Name:        ToolCompletedTasks,
			Description: "Lista las tareas completadas dentro de una ventana de días hacia atrás.",
			Parameters: []assistant.ToolParameter{
				{Name: "dias", Type: "integer", Description: "Ventana de búsqueda en días.", Default: defaultCompletedLookbackDays},
				{Name: "id_miembro", Type: "integer", Description: "Consultar las tareas de otro miembro del hogar."},
			},
		},
		assistant.ToolDefinition{
			Name:        ToolEvents,
			Description: "Lista los eventos del hogar según un filtro: todos, mes, semana o miembro.",
			Parameters: []assistant.ToolParameter{
				{Name: "filtro", Type: "string", Description: "todos | mes | semana | miembro", Default: filterAll},
				{Name: "id_miembro", Type: "integer", Description: "Miembro para el filtro 'miembro'."},
			},
		},
		assistant.ToolDefinition{
			Name:        ToolUnreadMessages,
			Description: "Lista los mensajes no leídos: directos, del hogar, o ambos.",
			Parameters: []assistant.ToolParameter{
				{Name: "ambito", Type: "string", Description: "directos | hogar | todos", Default: scopeAll},
			},
		},
		assistant.ToolDefinition{
			Name:        ToolCreateTask,
			Description: "Crea una tarea nueva en el hogar del miembro.",
			Parameters: []assistant.ToolParameter{
				{Name: "titulo", Type: "string", Description: "Título de la tarea.", Required: true},
				{Name: "descripcion", Type: "string", Description: "Detalle opcional."},
				{Name: "fecha_limite", Type: "string", Description: "Fecha límite en formato AAAA-MM-DD."},
				{Name: "id_asignado", Type: "integer", Description: "Miembro responsable; por defecto quien la crea."},
			},
			Mutating: true,
		},
		assistant.ToolDefinition{
			Name:        ToolDailySummary,
			Description: "Resumen del día: tareas pendientes, eventos de la semana y mensajes sin leer.",
		},
	)
	if err != nil {
		return nil, err
	}
	return &Catalog{Registry: registry, Dispatcher: dispatcher}, nil
}
